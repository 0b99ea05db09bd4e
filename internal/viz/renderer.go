package viz

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/physics"
)

var (
	ErrNoData          = errors.New("viz: nothing to render")
	ErrUnknownRenderer = errors.New("viz: unknown renderer")
)

// Renderer presents a finished trajectory and its energy series.
// Renderers only read their inputs.
type Renderer interface {
	Render(w io.Writer, tr *dynamo.Trajectory, e *dynamo.EnergySeries) error
}

// Nop discards its input.
type Nop struct{}

func (Nop) Render(io.Writer, *dynamo.Trajectory, *dynamo.EnergySeries) error { return nil }

var builders = map[string]func(osc *physics.Oscillator) Renderer{
	"summary": func(osc *physics.Oscillator) Renderer { return Summary{Osc: osc} },
	"plot":    func(*physics.Oscillator) Renderer { return Plot{} },
	"live":    func(osc *physics.Oscillator) Renderer { return Live{Osc: osc} },
	"none":    func(*physics.Oscillator) Renderer { return Nop{} },
}

// Lookup returns the renderer registered under name. osc supplies derived
// parameters to renderers that show them and may be nil.
func Lookup(name string, osc *physics.Oscillator) (Renderer, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownRenderer, name, Names())
	}
	return build(osc), nil
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// finitePrefix returns the length of the longest prefix on which every
// series holds finite values.
func finitePrefix(series ...[]float64) int {
	n := -1
	for _, s := range series {
		if n < 0 || len(s) < n {
			n = len(s)
		}
	}
	if n < 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		for _, s := range series {
			if !dynamo.IsFinite(s[i]) {
				return i
			}
		}
	}
	return n
}
