package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalworks/refinery/internal/sim"
)

func testSnapshot(tick uint64, vessel, recipe string) sim.Snapshot {
	return sim.Snapshot{
		Time:        time.Now().UTC().Truncate(time.Microsecond),
		Tick:        tick,
		Vessel:      vessel,
		Recipe:      recipe,
		Temperature: 1200.5,
		Efficiency:  0.58,
		TimeFactor:  1,
		HeatApplied: 4020,
		Status:      "58.0% eff.",
	}
}

func TestTelemetryRepository_InsertAndQuery(t *testing.T) {
	truncateTelemetry(t)
	ctx := context.Background()
	repo := NewTelemetryRepository(testPool)

	for tick := uint64(1); tick <= 5; tick++ {
		require.NoError(t, repo.Insert(ctx, testSnapshot(tick, "smelter", "ore_smelting")))
	}
	// A different converter must not leak into the query.
	require.NoError(t, repo.Insert(ctx, testSnapshot(1, "smelter", "sabatier")))

	snaps, err := repo.RecentByConverter(ctx, "smelter", "ore_smelting", 3)
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	// Newest first.
	assert.Equal(t, uint64(5), snaps[0].Tick)
	assert.Equal(t, uint64(4), snaps[1].Tick)
	assert.Equal(t, uint64(3), snaps[2].Tick)

	got := snaps[0]
	assert.Equal(t, "smelter", got.Vessel)
	assert.Equal(t, "ore_smelting", got.Recipe)
	assert.InDelta(t, 1200.5, got.Temperature, 1e-9)
	assert.InDelta(t, 0.58, got.Efficiency, 1e-9)
	assert.InDelta(t, 4020.0, got.HeatApplied, 1e-9)
	assert.Equal(t, "58.0% eff.", got.Status)
}

func TestTelemetryRepository_RecentByConverter_Empty(t *testing.T) {
	truncateTelemetry(t)

	snaps, err := NewTelemetryRepository(testPool).
		RecentByConverter(context.Background(), "ghost", "none", 10)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestTelemetryRepository_RecordImplementsSink(t *testing.T) {
	truncateTelemetry(t)
	ctx := context.Background()
	repo := NewTelemetryRepository(testPool)

	var _ sim.Sink = repo

	repo.Record(ctx, testSnapshot(7, "lab", "water_electrolysis"))

	snaps, err := repo.RecentByConverter(ctx, "lab", "water_electrolysis", 1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, uint64(7), snaps[0].Tick)
}
