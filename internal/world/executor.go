package world

import (
	"fmt"

	"github.com/orbitalworks/refinery/internal/model"
)

// Execute applies one converter's ratio set against the vessel's tanks for a
// dt-second tick. It first finds the time factor — the fraction of the full
// tick that is satisfiable given input availability and output space — then
// applies every transfer scaled by that factor. All entries share one time
// factor so the recipe's stoichiometry is preserved under shortage.
//
// Dump-excess outputs never limit the time factor; their overflow is
// discarded instead.
func Execute(v *Vessel, ratios *model.RatioSet, dt float64) model.TickResult {
	if ratios == nil || dt <= 0 {
		return model.TickResult{TimeFactor: 0, Status: "no flow"}
	}

	factor := 1.0
	status := "ok"

	limit := func(f float64, s string) {
		if f < factor {
			factor = f
			status = s
		}
	}

	for _, e := range ratios.Inputs {
		need := e.Ratio * dt
		if need <= 0 {
			continue
		}
		tank := v.Tank(e.Resource)
		if tank == nil {
			limit(0, fmt.Sprintf("insufficient %s", e.Resource))
			continue
		}
		if tank.Amount < need {
			limit(tank.Amount/need, fmt.Sprintf("insufficient %s", e.Resource))
		}
	}

	for _, e := range ratios.Outputs {
		if e.DumpExcess {
			continue
		}
		need := e.Ratio * dt
		if need <= 0 {
			continue
		}
		tank := v.Tank(e.Resource)
		if tank == nil {
			limit(0, fmt.Sprintf("no space for %s", e.Resource))
			continue
		}
		if free := tank.Free(); free < need {
			limit(free/need, fmt.Sprintf("no space for %s", e.Resource))
		}
	}

	if factor < 0 {
		factor = 0
	}

	for _, e := range ratios.Inputs {
		tank := v.Tank(e.Resource)
		if tank == nil {
			continue
		}
		tank.Amount -= e.Ratio * dt * factor
		if tank.Amount < 0 {
			tank.Amount = 0
		}
	}

	for _, e := range ratios.Outputs {
		tank := v.Tank(e.Resource)
		if tank == nil {
			// Dump-excess output with no tank: produced and discarded.
			continue
		}
		tank.Amount += e.Ratio * dt * factor
		if tank.Amount > tank.Capacity {
			tank.Amount = tank.Capacity
		}
	}

	return model.TickResult{TimeFactor: factor, Status: status}
}
