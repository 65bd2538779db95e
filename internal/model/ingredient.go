package model

// FlowMode selects how a reported ratio draws from or delivers to the vessel.
type FlowMode int32

const (
	// FlowModeAllVessel draws from and delivers to the whole vessel's tanks,
	// not just the converter's own part.
	FlowModeAllVessel FlowMode = iota
	// FlowModePartOnly restricts flow to the converter's own part. Converters
	// never report this mode; it exists for host-side tank plumbing.
	FlowModePartOnly
)

// Ingredient is one entry of a converter recipe.
type Ingredient struct {
	Name        string
	Ratio       float64 // mass flow contribution, kg/s before scaling
	Density     float64 // kg per storage unit; 0 means the ratio is already unit-less
	Heat        float64 // MJ per kg processed; positive values release heat on the output side
	Real        bool    // false for virtual heat-only bookkeeping entries
	Discardable bool    // excess output may be dumped instead of stalling the process
}

// RatioEntry is the per-resource flow report the host executor consumes.
type RatioEntry struct {
	Resource   string
	Ratio      float64 // units/s in host storage units
	DumpExcess bool
	Flow       FlowMode
}

// RatioSet holds the fixed-shape input and output ratio reports for one
// converter. Slice lengths are fixed at first successful activation to the
// count of real ingredients on each side and never change afterwards.
type RatioSet struct {
	Inputs  []RatioEntry
	Outputs []RatioEntry
}
