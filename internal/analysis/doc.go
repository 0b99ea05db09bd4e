// Package analysis characterizes a computed trajectory.
//
//   - [DominantFrequency]: peak of the FFT power spectrum
//   - [SignChanges]: zero crossings of the displacement
//   - [LogDecrement]: decay per cycle from successive peaks
//   - [Inspect]: all of the above plus a regime check against the model
//   - [NewPhasePortrait]: displacement/velocity scatter as ASCII
//
// # Regime Check
//
// The damping ratio predicts how often the displacement changes sign:
//
//	report := analysis.Inspect(osc, traj)
//	if !report.Consistent {
//	    // observed crossings disagree with the damping ratio
//	}
package analysis
