package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalworks/refinery/internal/model"
)

func simpleRatios() *model.RatioSet {
	return &model.RatioSet{
		Inputs: []model.RatioEntry{
			{Resource: "Ore", Ratio: 10, Flow: model.FlowModeAllVessel},
		},
		Outputs: []model.RatioEntry{
			{Resource: "Metal", Ratio: 5, Flow: model.FlowModeAllVessel},
		},
	}
}

func TestExecute_FullTick(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 100, 100)
	v.AddTank("Metal", 0, 100)

	res := Execute(v, simpleRatios(), 1)

	assert.Equal(t, 1.0, res.TimeFactor)
	assert.Equal(t, "ok", res.Status)
	assert.InDelta(t, 90.0, v.Tank("Ore").Amount, 1e-12)
	assert.InDelta(t, 5.0, v.Tank("Metal").Amount, 1e-12)
}

func TestExecute_InputShortageScalesEverything(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 2, 100) // only 20% of the 10-unit demand
	v.AddTank("Metal", 0, 100)

	res := Execute(v, simpleRatios(), 1)

	assert.InDelta(t, 0.2, res.TimeFactor, 1e-12)
	assert.Equal(t, "insufficient Ore", res.Status)
	assert.InDelta(t, 0.0, v.Tank("Ore").Amount, 1e-12)
	// Output scaled by the same factor: stoichiometry preserved.
	assert.InDelta(t, 1.0, v.Tank("Metal").Amount, 1e-12)
}

func TestExecute_MissingInputTankBlocks(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	v.AddTank("Metal", 0, 100)

	res := Execute(v, simpleRatios(), 1)

	assert.Equal(t, 0.0, res.TimeFactor)
	assert.Equal(t, "insufficient Ore", res.Status)
	assert.Zero(t, v.Tank("Metal").Amount)
}

func TestExecute_FullOutputTankStalls(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 100, 100)
	v.AddTank("Metal", 100, 100)

	res := Execute(v, simpleRatios(), 1)

	assert.Equal(t, 0.0, res.TimeFactor)
	assert.Equal(t, "no space for Metal", res.Status)
	assert.InDelta(t, 100.0, v.Tank("Ore").Amount, 1e-12, "no input consumed when stalled")
}

func TestExecute_DumpExcessNeverLimits(t *testing.T) {
	t.Parallel()

	ratios := simpleRatios()
	ratios.Outputs[0].DumpExcess = true

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 100, 100)
	v.AddTank("Metal", 99, 100) // almost full, but excess is discarded

	res := Execute(v, ratios, 1)

	assert.Equal(t, 1.0, res.TimeFactor)
	assert.InDelta(t, 90.0, v.Tank("Ore").Amount, 1e-12)
	assert.InDelta(t, 100.0, v.Tank("Metal").Amount, 1e-12, "overflow clamped to capacity")
}

func TestExecute_DumpExcessWithoutTank(t *testing.T) {
	t.Parallel()

	ratios := simpleRatios()
	ratios.Outputs[0].DumpExcess = true

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 100, 100)
	// No Metal tank at all: production is discarded, conversion still runs.

	res := Execute(v, ratios, 1)

	assert.Equal(t, 1.0, res.TimeFactor)
	assert.InDelta(t, 90.0, v.Tank("Ore").Amount, 1e-12)
}

func TestExecute_PartialOutputSpace(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 100, 100)
	v.AddTank("Metal", 98, 100) // space for 2 of the 5 produced

	res := Execute(v, simpleRatios(), 1)

	assert.InDelta(t, 0.4, res.TimeFactor, 1e-12)
	assert.Equal(t, "no space for Metal", res.Status)
	assert.InDelta(t, 96.0, v.Tank("Ore").Amount, 1e-12)
	assert.InDelta(t, 100.0, v.Tank("Metal").Amount, 1e-12)
}

func TestExecute_NilRatios(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	res := Execute(v, nil, 1)
	assert.Zero(t, res.TimeFactor)
}

func TestExecute_DeltaTimeScalesDemand(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 100, 100)
	v.AddTank("Metal", 0, 100)

	res := Execute(v, simpleRatios(), 0.5)
	require.Equal(t, 1.0, res.TimeFactor)
	assert.InDelta(t, 95.0, v.Tank("Ore").Amount, 1e-12)
	assert.InDelta(t, 2.5, v.Tank("Metal").Amount, 1e-12)
}

func TestVessel_Thermal(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 50) // 50 kJ/K

	assert.InDelta(t, 290.0, v.Temperature(), 1e-12)

	v.ApplyHeat(100, 1) // 100 kJ → +2 K
	assert.InDelta(t, 292.0, v.Temperature(), 1e-12)

	v.ApplyHeat(100, 2.5) // +250 kJ → +5 K more
	assert.InDelta(t, 297.0, v.Temperature(), 1e-12)

	// Cooling never drops below ambient.
	v.ApplyHeat(-1e6, 10)
	assert.InDelta(t, 290.0, v.Temperature(), 1e-12)
}

func TestVessel_AddTank_ClampsOverfill(t *testing.T) {
	t.Parallel()

	v := NewVessel("test", 290, 100)
	v.AddTank("Ore", 500, 100)
	assert.Equal(t, 100.0, v.Tank("Ore").Amount)
	assert.Nil(t, v.Tank("Missing"))
}
