package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbitalworks/refinery/internal/sim"
)

// TelemetryRepository stores per-tick converter snapshots.
type TelemetryRepository struct {
	db *pgxpool.Pool
}

// NewTelemetryRepository creates a new TelemetryRepository.
func NewTelemetryRepository(db *pgxpool.Pool) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// Insert stores one snapshot.
func (r *TelemetryRepository) Insert(ctx context.Context, snap sim.Snapshot) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tick_telemetry
		   (recorded_at, tick, vessel, recipe, temperature, efficiency, time_factor, heat_applied, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		snap.Time, int64(snap.Tick), snap.Vessel, snap.Recipe,
		snap.Temperature, snap.Efficiency, snap.TimeFactor, snap.HeatApplied, snap.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting telemetry for %s/%s: %w", snap.Vessel, snap.Recipe, err)
	}
	return nil
}

// RecentByConverter loads up to limit most recent snapshots for one converter,
// newest first.
func (r *TelemetryRepository) RecentByConverter(ctx context.Context, vessel, recipe string, limit int) ([]sim.Snapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT recorded_at, tick, vessel, recipe, temperature, efficiency, time_factor, heat_applied, status
		 FROM tick_telemetry
		 WHERE vessel = $1 AND recipe = $2
		 ORDER BY tick DESC
		 LIMIT $3`,
		vessel, recipe, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying telemetry for %s/%s: %w", vessel, recipe, err)
	}
	defer rows.Close()

	snaps := make([]sim.Snapshot, 0, limit)
	for rows.Next() {
		var snap sim.Snapshot
		var tick int64
		if err := rows.Scan(&snap.Time, &tick, &snap.Vessel, &snap.Recipe,
			&snap.Temperature, &snap.Efficiency, &snap.TimeFactor,
			&snap.HeatApplied, &snap.Status); err != nil {
			return nil, fmt.Errorf("scanning telemetry row: %w", err)
		}
		snap.Tick = uint64(tick)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating telemetry rows: %w", err)
	}
	return snaps, nil
}

// Record implements sim.Sink. Insert failures are logged, not propagated:
// telemetry loss must never stall the tick loop.
func (r *TelemetryRepository) Record(ctx context.Context, snap sim.Snapshot) {
	if err := r.Insert(ctx, snap); err != nil {
		slog.Error("recording telemetry", "vessel", snap.Vessel, "recipe", snap.Recipe, "error", err)
	}
}
