package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/physics"
	"github.com/san-kum/dampsim/internal/viz"
)

// Point is one vertex of a polyline.
type Point struct{ X, Y float64 }

// Kinds lists the plots WriteSVG can draw.
var Kinds = []string{"displacement", "phase", "energy", "canvas"}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	dw, dh := canvas.Dots()
	width, height := float64(dw)*scale, float64(dh)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PolylineSVG draws the points as a single path scaled to fit width x height
// with 10% padding. Fewer than two points produce "".
func PolylineSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteFrameSVG draws one frame of the live spring-mass view, scaled to the
// given width. A negative frame selects the last finite sample. osc may be
// nil, in which case no equilibrium marker is drawn.
func WriteFrameSVG(w io.Writer, tr *dynamo.Trajectory, e *dynamo.EnergySeries, osc *physics.Oscillator, frame, width int) error {
	canvas, err := viz.NewModel(tr, e, osc, 0).Snapshot(frame)
	if err != nil {
		return err
	}
	dw, _ := canvas.Dots()
	_, err = io.WriteString(w, CanvasToSVG(canvas, float64(width)/float64(dw))+"\n")
	return err
}

// WriteSVG renders one kind of plot for a run: displacement over time,
// the (x, v) phase portrait, total mechanical energy over time, or the
// final frame of the spring-mass view.
// Samples from the first non-finite value onwards are left out.
func WriteSVG(w io.Writer, kind string, tr *dynamo.Trajectory, e *dynamo.EnergySeries, width, height int) error {
	if kind == "canvas" {
		return WriteFrameSVG(w, tr, e, nil, -1, width)
	}

	n := tr.Len()
	if i, diverged := tr.Diverged(); diverged {
		n = i
	}

	var points []Point
	color := "#00ffff"
	switch kind {
	case "displacement":
		points = series(tr.T[:n], tr.X[:n])
	case "phase":
		points = series(tr.X[:n], tr.V[:n])
		color = "#ff00ff"
	case "energy":
		if e == nil {
			return fmt.Errorf("energy plot needs an energy series")
		}
		points = series(tr.T[:n], e.Total[:min(n, e.Len())])
		color = "#ffcc00"
	default:
		return fmt.Errorf("unknown svg kind %q (available: %v)", kind, Kinds)
	}

	svg := PolylineSVG(points, width, height, color)
	if svg == "" {
		return fmt.Errorf("%s plot needs at least two finite samples", kind)
	}
	_, err := io.WriteString(w, svg+"\n")
	return err
}

func series(xs, ys []float64) []Point {
	n := min(len(xs), len(ys))
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		if dynamo.IsFinite(xs[i]) && dynamo.IsFinite(ys[i]) {
			points = append(points, Point{X: xs[i], Y: ys[i]})
		}
	}
	return points
}
