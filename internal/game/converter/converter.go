// Package converter implements the temperature-scaled resource converter:
// it resolves a named recipe, bakes it into concrete per-resource mass-flow
// ratios scaled by a temperature-derived efficiency, and reports those ratios
// to the host flow executor once per physics tick.
package converter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/orbitalworks/refinery/internal/model"
)

// BrokenConfigMessage is surfaced by Describe when the configured recipe
// cannot be resolved. The converter stays in the tick loop as a no-op.
const BrokenConfigMessage = "converter configuration is broken: recipe not found"

// timeFactorEpsilon — below this fraction of a tick the conversion is treated
// as fully blocked and the host status is surfaced verbatim.
const timeFactorEpsilon = 1e-5

// RecipeSource resolves recipe templates by name (injected dependency).
type RecipeSource interface {
	ConverterRecipe(name string) (model.ConverterRecipe, bool)
	ReferenceBake(name string) (model.BakedRecipe, bool)
}

// Config holds a converter's persisted settings.
type Config struct {
	RecipeName string
	Rate       float64 // flow-rate multiplier over the recipe's rated kg/s
	Curve      Curve
}

// bakeCache tracks the inputs of the last bake. Recompute happens exactly
// when efficiency or deltaTime differ from the previous tick (exact
// inequality, never a tolerance), not unconditionally.
type bakeCache struct {
	efficiency float64
	deltaTime  float64
	effValid   bool
	dtValid    bool
}

// Converter is tick-driven and single-writer: the host calls into it from one
// simulation goroutine only, so its cached state needs no locking.
type Converter struct {
	cfg      Config
	tmpl     model.ConverterRecipe
	display  model.BakedRecipe // reference bake for Describe
	current  model.BakedRecipe // working bake at the live efficiency
	ratios   *model.RatioSet
	cache    bakeCache
	heatFlux float64 // kW at full time factor for the current rates
	status   string
	resolved bool
	broken   bool
	rebakes  int
}

// New creates a converter from config. A zero Rate defaults to 1 and a zero
// Curve to the default ramp.
func New(cfg Config) *Converter {
	if cfg.Rate == 0 {
		cfg.Rate = 1
	}
	if cfg.Curve == (Curve{}) {
		cfg.Curve = DefaultCurve()
	}
	return &Converter{cfg: cfg, status: "inactive"}
}

// Resolve looks the configured recipe up in src. On a miss the converter
// enters a broken state: it keeps participating in the tick loop as a no-op
// and Describe reports the broken configuration. Resolve may be called again
// after a registry reload.
func (c *Converter) Resolve(src RecipeSource) bool {
	tmpl, ok := src.ConverterRecipe(c.cfg.RecipeName)
	if !ok {
		slog.Warn("recipe not found, converter disabled", "recipe", c.cfg.RecipeName)
		c.broken = true
		c.resolved = false
		return false
	}
	// The two lookups can straddle a registry reload that drops the recipe;
	// a reference-bake miss therefore breaks the converter the same way a
	// template miss does.
	display, ok := src.ReferenceBake(c.cfg.RecipeName)
	if !ok {
		slog.Warn("recipe disappeared during resolve, converter disabled", "recipe", c.cfg.RecipeName)
		c.broken = true
		c.resolved = false
		return false
	}

	c.tmpl = tmpl
	c.display = display
	c.broken = false
	c.resolved = true
	c.cache = bakeCache{}
	c.ratios = nil
	return true
}

// RecipeName returns the configured recipe name.
func (c *Converter) RecipeName() string { return c.cfg.RecipeName }

// Broken reports whether recipe resolution failed.
func (c *Converter) Broken() bool { return c.broken }

// Status returns the last status line produced by OnTickResult.
func (c *Converter) Status() string { return c.status }

// HeatFlux returns the nominal full-rate heat flux of the last recompute, kW.
func (c *Converter) HeatFlux() float64 { return c.heatFlux }

// Efficiency returns the efficiency of the last bake, zero before any tick.
func (c *Converter) Efficiency() float64 { return c.cache.efficiency }

// Rebakes returns how many efficiency bakes have been performed. Exposed for
// instrumentation: cache behavior is observable without poking internals.
func (c *Converter) Rebakes() int { return c.rebakes }

// Tick computes the ratio set for one physics step. It returns nil when there
// is no work this tick: the recipe is unresolved or the converter is inactive
// (inactive suspends flow entirely rather than reporting zero rates).
//
// The returned set is reused across ticks; its slice lengths are fixed at the
// real-ingredient count per side from the first successful activation on.
func (c *Converter) Tick(env model.TickEnv) *model.RatioSet {
	if !c.resolved || !env.Active {
		return nil
	}

	if c.ratios == nil {
		// Sized from the template, the same source fillEntries walks.
		c.ratios = &model.RatioSet{
			Inputs:  make([]model.RatioEntry, realCount(c.tmpl.Inputs)),
			Outputs: make([]model.RatioEntry, realCount(c.tmpl.Outputs)),
		}
	}

	eff := c.cfg.Curve.Efficiency(env.Temperature)
	if !c.cache.effValid || eff != c.cache.efficiency {
		c.current = c.tmpl.Bake(eff)
		c.cache.efficiency = eff
		c.cache.effValid = true
		// A rate recompute is always required after an efficiency change,
		// whether or not deltaTime itself changed.
		c.cache.dtValid = false
		c.rebakes++
	}

	if !c.cache.dtValid || env.DeltaTime != c.cache.deltaTime {
		c.recomputeRates()
		c.cache.deltaTime = env.DeltaTime
		c.cache.dtValid = true
	}

	return c.ratios
}

// recomputeRates mass-bakes each side at its rated flow times the configured
// Rate, refreshes the aggregate heat flux and fills the ratio entries.
func (c *Converter) recomputeRates() {
	inputs := c.current.Inputs.BakeAtMass(c.current.Inputs.MassRate() * c.cfg.Rate)
	outputs := c.current.Outputs.BakeAtMass(c.current.Outputs.MassRate() * c.cfg.Rate)

	// MW → kW. Outputs add heat, inputs remove it.
	c.heatFlux = (outputs.HeatRate() - inputs.HeatRate()) * 1000

	fillEntries(c.ratios.Inputs, inputs)
	fillEntries(c.ratios.Outputs, outputs)
}

func realCount(side []model.Ingredient) int {
	n := 0
	for _, ing := range side {
		if ing.Real {
			n++
		}
	}
	return n
}

func fillEntries(entries []model.RatioEntry, r model.Recipe) {
	i := 0
	for _, ing := range r.Ingredients {
		if !ing.Real {
			// Virtual ingredients contribute heat only; they never occupy a
			// ratio slot.
			continue
		}
		entries[i] = model.RatioEntry{
			Resource:   ing.Name,
			Ratio:      hostRatio(ing),
			DumpExcess: ing.Discardable,
			Flow:       model.FlowModeAllVessel,
		}
		i++
	}
}

// hostRatio converts a kg/s mass flow into the host's storage units per
// second: divide by density for volumetric units, then by 1000 for the host's
// tonne-based mass scale. Zero density means the ratio is already unit-less.
func hostRatio(ing model.Ingredient) float64 {
	if ing.Density > 0 {
		return ing.Ratio / ing.Density / 1000
	}
	return ing.Ratio
}

// OnTickResult ingests the host executor's report for this tick and returns
// the heat to apply, in kW, proportional to how much of the conversion
// actually happened. Below timeFactorEpsilon the host status (typically the
// blocking shortage) is surfaced verbatim; otherwise the efficiency line is.
func (c *Converter) OnTickResult(res model.TickResult) float64 {
	if res.TimeFactor < timeFactorEpsilon {
		c.status = res.Status
	} else {
		c.status = fmt.Sprintf("%.1f%% eff.", c.cache.efficiency*100)
	}
	return c.heatFlux * res.TimeFactor
}

// Describe returns a human-readable description of the converter at the
// reference bake: rated mass and heat flow plus itemized ingredients.
// It degrades to BrokenConfigMessage when no valid recipe was resolved.
func (c *Converter) Describe() string {
	if !c.resolved {
		return BrokenConfigMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recipe: %s\n", c.cfg.RecipeName)
	fmt.Fprintf(&b, "Rated mass flow: %.3f kg/s\n", c.display.Inputs.MassRate()*c.cfg.Rate)
	fmt.Fprintf(&b, "Rated heat flow: %.1f kW\n",
		(c.display.Outputs.HeatRate()-c.display.Inputs.HeatRate())*1000*c.cfg.Rate)

	describeSide(&b, "Inputs", c.display.Inputs, c.cfg.Rate)
	describeSide(&b, "Outputs", c.display.Outputs, c.cfg.Rate)
	return b.String()
}

func describeSide(b *strings.Builder, label string, r model.Recipe, rate float64) {
	fmt.Fprintf(b, "%s:\n", label)
	for _, ing := range r.Ingredients {
		fmt.Fprintf(b, "  - %s: %.3f kg/s", ing.Name, ing.Ratio*rate)
		if !ing.Real {
			b.WriteString(" (virtual)")
		}
		if ing.Discardable {
			b.WriteString(" (excess discarded)")
		}
		b.WriteByte('\n')
	}
}
