// Package viz renders finished trajectories to a terminal.
//
// Every output goes through the [Renderer] interface:
//
//   - [Summary]: a lipgloss panel with derived parameters and the energy budget
//   - [Plot]: six asciigraph panels (displacement, phase space,
//     velocity/acceleration, potential/kinetic, dissipated, total)
//   - [Live]: a Bubble Tea replay drawing the spring and mass on a braille
//     [Canvas], one frame per sample
//
// # Key Bindings (live)
//
//	Space - Pause/Resume replay
//	R     - Restart from the first sample
//	Q     - Quit
package viz
