package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurve_Efficiency(t *testing.T) {
	t.Parallel()

	curve := DefaultCurve()

	tests := []struct {
		name string
		temp float64
		want float64
	}{
		{name: "absolute zero", temp: 0, want: 0},
		{name: "below min", temp: 100, want: 0},
		{name: "exactly min", temp: 273.15, want: 0},
		{name: "midpoint", temp: (273.15 + 1873) / 2, want: 0.5},
		{name: "exactly max", temp: 1873, want: 1},
		{name: "above max", temp: 5000, want: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, curve.Efficiency(tt.temp), 1e-12)
		})
	}
}

func TestCurve_Efficiency_StrictlyMonotonicBetween(t *testing.T) {
	t.Parallel()

	curve := DefaultCurve()
	prev := curve.Efficiency(curve.MinTemp)
	for temp := curve.MinTemp + 10; temp < curve.MaxTemp; temp += 10 {
		e := curve.Efficiency(temp)
		assert.Greater(t, e, prev, "efficiency must strictly increase at %.2f K", temp)
		prev = e
	}
}

func TestCurve_Efficiency_Linear(t *testing.T) {
	t.Parallel()

	curve := Curve{MinTemp: 100, MaxTemp: 1100}
	// Equal temperature steps produce equal efficiency steps.
	step := curve.Efficiency(300) - curve.Efficiency(200)
	assert.InDelta(t, step, curve.Efficiency(700)-curve.Efficiency(600), 1e-12)
	assert.InDelta(t, 0.1, step, 1e-12)
}

func TestCurve_Efficiency_CustomBounds(t *testing.T) {
	t.Parallel()

	curve := Curve{MinTemp: 500, MaxTemp: 1500}
	assert.Equal(t, 0.0, curve.Efficiency(499))
	assert.InDelta(t, 0.5, curve.Efficiency(1000), 1e-12)
	assert.Equal(t, 1.0, curve.Efficiency(1500))
}

func TestCurve_Efficiency_DegenerateActsAsStep(t *testing.T) {
	t.Parallel()

	curve := Curve{MinTemp: 1000, MaxTemp: 1000}
	assert.Equal(t, 0.0, curve.Efficiency(999))
	assert.Equal(t, 1.0, curve.Efficiency(1000))
	assert.Equal(t, 1.0, curve.Efficiency(2000))
}
