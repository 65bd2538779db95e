// Package sim drives the per-tick simulation loop: for every vessel it feeds
// each converter its environment, executes the reported flows against the
// vessel's tanks, applies the resulting heat and fans snapshots out to sinks.
package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/orbitalworks/refinery/internal/game/converter"
	"github.com/orbitalworks/refinery/internal/model"
	"github.com/orbitalworks/refinery/internal/world"
)

// Snapshot is one converter's telemetry record for one tick.
type Snapshot struct {
	Time        time.Time `json:"time"`
	Tick        uint64    `json:"tick"`
	Vessel      string    `json:"vessel"`
	Recipe      string    `json:"recipe"`
	Temperature float64   `json:"temperature"` // K, at tick start
	Efficiency  float64   `json:"efficiency"`
	TimeFactor  float64   `json:"time_factor"`
	HeatApplied float64   `json:"heat_applied"` // kW
	Status      string    `json:"status"`
}

// Sink receives per-tick snapshots. Implemented by the telemetry hub and the
// database store.
type Sink interface {
	Record(ctx context.Context, snap Snapshot)
}

// Instance is one converter plus its activation flag.
type Instance struct {
	Conv   *converter.Converter
	Active bool
}

// Unit pairs a vessel with the converter instances mounted on it.
type Unit struct {
	Vessel    *world.Vessel
	Instances []*Instance
}

// Manager runs the fixed-timestep simulation loop. All game state is touched
// only from the loop goroutine; external requests (recipe re-resolution) are
// marshalled in through a channel.
type Manager struct {
	units    []*Unit
	interval time.Duration
	timestep float64 // simulated seconds per tick
	sinks    []Sink

	tick      uint64
	stopCh    chan struct{}
	stopOnce  sync.Once
	resolveCh chan converter.RecipeSource
}

// NewManager creates a tick manager stepping timestep simulated seconds every
// interval of wall time.
func NewManager(interval time.Duration, timestep float64, sinks ...Sink) *Manager {
	return &Manager{
		interval:  interval,
		timestep:  timestep,
		sinks:     sinks,
		stopCh:    make(chan struct{}),
		resolveCh: make(chan converter.RecipeSource, 1),
	}
}

// AddUnit registers a vessel and its converters. Not safe to call after Run
// has started.
func (m *Manager) AddUnit(u *Unit) {
	m.units = append(m.units, u)
}

// ResolveAll resolves every converter against src. Call before Run starts;
// once the loop is running use RequestResolve instead.
func (m *Manager) ResolveAll(src converter.RecipeSource) {
	for _, u := range m.units {
		for _, inst := range u.Instances {
			inst.Conv.Resolve(src)
		}
	}
}

// RequestResolve asks the running loop to re-resolve all converters against
// src on its next iteration. Used after a recipe registry reload.
func (m *Manager) RequestResolve(src converter.RecipeSource) {
	select {
	case m.resolveCh <- src:
	default:
	}
}

// Run starts the tick loop and blocks until ctx is cancelled or Stop is
// called.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("simulation tick manager started",
		"interval", m.interval,
		"timestep", m.timestep,
		"vessels", len(m.units))

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("simulation tick manager stopped")
			return nil

		case src := <-m.resolveCh:
			m.ResolveAll(src)
			slog.Info("converters re-resolved after registry reload")

		case <-ticker.C:
			m.Step(ctx, m.timestep)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Tick returns the number of completed ticks.
func (m *Manager) Tick() uint64 { return m.tick }

// Step advances the simulation by dt simulated seconds. Exposed so tests and
// offline tools can drive the loop synchronously.
func (m *Manager) Step(ctx context.Context, dt float64) {
	m.tick++
	now := time.Now()

	for _, u := range m.units {
		// Captured once so every converter on the vessel sees the same tick
		// temperature regardless of processing order.
		temp := u.Vessel.Temperature()

		for _, inst := range u.Instances {
			env := model.TickEnv{Temperature: temp, DeltaTime: dt, Active: inst.Active}
			ratios := inst.Conv.Tick(env)
			if ratios == nil {
				continue
			}

			res := world.Execute(u.Vessel, ratios, dt)
			applied := inst.Conv.OnTickResult(res)
			u.Vessel.ApplyHeat(applied, dt)

			snap := Snapshot{
				Time:        now,
				Tick:        m.tick,
				Vessel:      u.Vessel.Name(),
				Recipe:      inst.Conv.RecipeName(),
				Temperature: temp,
				Efficiency:  inst.Conv.Efficiency(),
				TimeFactor:  res.TimeFactor,
				HeatApplied: applied,
				Status:      inst.Conv.Status(),
			}
			for _, s := range m.sinks {
				s.Record(ctx, snap)
			}
		}
	}
}
