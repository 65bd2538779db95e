package converter

// Default efficiency ramp bounds, K. The ramp approximates iron processing;
// other materials need their own bounds, which is why they are configurable
// per converter instead of package constants.
const (
	DefaultMinTemp = 273.15
	DefaultMaxTemp = 1873
)

// Curve maps part temperature to conversion efficiency with a linear ramp:
// zero at or below MinTemp, full at or above MaxTemp.
type Curve struct {
	MinTemp float64 // K
	MaxTemp float64 // K
}

// DefaultCurve returns the iron-processing ramp.
func DefaultCurve() Curve {
	return Curve{MinTemp: DefaultMinTemp, MaxTemp: DefaultMaxTemp}
}

// Efficiency returns clamp((temp − MinTemp)/(MaxTemp − MinTemp), 0, 1).
// A degenerate curve (MaxTemp ≤ MinTemp) acts as a step at MinTemp.
func (c Curve) Efficiency(temp float64) float64 {
	span := c.MaxTemp - c.MinTemp
	if span <= 0 {
		if temp >= c.MinTemp {
			return 1
		}
		return 0
	}
	e := (temp - c.MinTemp) / span
	if e < 0 {
		return 0
	}
	if e > 1 {
		return 1
	}
	return e
}
