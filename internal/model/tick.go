package model

// TickEnv carries the per-tick environment signals the host feeds a converter.
type TickEnv struct {
	Temperature float64 // part temperature, K
	DeltaTime   float64 // physics timestep, s
	Active      bool
}

// TickResult is the host executor's report after applying a ratio set.
type TickResult struct {
	TimeFactor float64 // fraction of the full tick that was satisfiable, [0,1]
	Status     string  // host-provided description of any blockage
}
