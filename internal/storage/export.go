package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta         RunMetadata `json:"meta"`
	Time         []float64   `json:"time"`
	Displacement []float64   `json:"displacement"`
	Velocity     []float64   `json:"velocity"`
	Acceleration []float64   `json:"acceleration"`
	Potential    []float64   `json:"potential"`
	Kinetic      []float64   `json:"kinetic"`
	Total        []float64   `json:"total"`
	Loss         []float64   `json:"loss"`
}

// ExportJSON writes the run as indented JSON. Runs holding NaN or Inf
// cannot be represented and return an error.
func ExportJSON(w io.Writer, run *Run) error {
	data := ExportData{
		Meta:         run.Meta,
		Time:         run.Trajectory.T,
		Displacement: run.Trajectory.X,
		Velocity:     run.Trajectory.V,
		Acceleration: run.Trajectory.A,
		Potential:    run.Energy.Potential,
		Kinetic:      run.Energy.Kinetic,
		Total:        run.Energy.Total,
		Loss:         run.Energy.Loss,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
