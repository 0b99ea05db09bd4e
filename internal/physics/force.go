package physics

// Spring is a linear spring. RestLength only matters in the Absolute
// formulation.
type Spring struct {
	Stiffness  float64 `yaml:"stiffness" json:"stiffness"`
	RestLength float64 `yaml:"rest_length" json:"rest_length"`
}

// Force returns the restoring force for the given extension.
func (s Spring) Force(extension float64) float64 {
	return -s.Stiffness * extension
}

// Potential returns the elastic energy stored at the given extension.
func (s Spring) Potential(extension float64) float64 {
	return 0.5 * s.Stiffness * extension * extension
}

// Damper is a linear viscous damper. A zero coefficient is undamped.
type Damper struct {
	Coefficient float64 `yaml:"coefficient" json:"coefficient"`
}

func (d Damper) Force(velocity float64) float64 {
	return -d.Coefficient * velocity
}

// Power returns the rate at which the damper removes energy.
func (d Damper) Power(velocity float64) float64 {
	return d.Coefficient * velocity * velocity
}
