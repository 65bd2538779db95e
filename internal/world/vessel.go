// Package world holds the host side of the simulation: the vessel with its
// resource tanks and thermal state, and the flow executor that applies
// converter ratio reports each tick.
package world

// Tank is a single resource store on a vessel.
type Tank struct {
	Resource string
	Amount   float64 // current stored units
	Capacity float64 // maximum units
}

// Free returns the remaining capacity.
func (t *Tank) Free() float64 {
	return t.Capacity - t.Amount
}

// Vessel is a collection of tanks plus a lumped thermal state. Like every
// piece of per-tick game state it is single-writer: only the simulation
// goroutine touches it, so there is no locking.
type Vessel struct {
	name         string
	tanks        map[string]*Tank
	baseTemp     float64 // ambient temperature, K
	heatCapacity float64 // kJ/K
	storedHeat   float64 // kJ above ambient
}

// NewVessel creates a vessel at ambient temperature baseTemp with the given
// lumped heat capacity in kJ/K. A non-positive capacity defaults to 1.
func NewVessel(name string, baseTemp, heatCapacity float64) *Vessel {
	if heatCapacity <= 0 {
		heatCapacity = 1
	}
	return &Vessel{
		name:         name,
		tanks:        make(map[string]*Tank),
		baseTemp:     baseTemp,
		heatCapacity: heatCapacity,
	}
}

// Name returns the vessel name.
func (v *Vessel) Name() string { return v.name }

// AddTank installs a tank for a resource. An existing tank for the same
// resource is replaced.
func (v *Vessel) AddTank(resource string, amount, capacity float64) {
	if amount > capacity {
		amount = capacity
	}
	v.tanks[resource] = &Tank{Resource: resource, Amount: amount, Capacity: capacity}
}

// Tank returns the tank for a resource, or nil if the vessel has none.
func (v *Vessel) Tank(resource string) *Tank {
	return v.tanks[resource]
}

// Temperature returns the current lumped part temperature in K.
func (v *Vessel) Temperature() float64 {
	return v.baseTemp + v.storedHeat/v.heatCapacity
}

// ApplyHeat accumulates flux kW over dt seconds. Stored heat never drops
// below zero: the ambient environment keeps the part at base temperature.
func (v *Vessel) ApplyHeat(flux, dt float64) {
	v.storedHeat += flux * dt
	if v.storedHeat < 0 {
		v.storedHeat = 0
	}
}
