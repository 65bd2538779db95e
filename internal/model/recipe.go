package model

// BakeInfo records which bake produced a Recipe.
type BakeInfo struct {
	Efficiency  float64
	Fingerprint string // recipe registry fingerprint at bake time
}

// Recipe is a concrete ordered ingredient list produced by a bake.
// Recipes are rebuilt on every bake, never mutated in place, so a Recipe
// handed out on one tick stays valid on the next.
type Recipe struct {
	Ingredients []Ingredient
	Provenance  BakeInfo
}

// MassRate returns the summed mass flow of all ingredients in kg/s.
func (r Recipe) MassRate() float64 {
	var total float64
	for _, ing := range r.Ingredients {
		total += ing.Ratio
	}
	return total
}

// HeatRate returns the summed heat contribution in MW. Virtual ingredients
// count: they exist precisely to carry heat without moving a resource.
func (r Recipe) HeatRate() float64 {
	var total float64
	for _, ing := range r.Ingredients {
		total += ing.Ratio * ing.Heat
	}
	return total
}

// RealCount returns how many ingredients map to actual flow-network resources.
func (r Recipe) RealCount() int {
	n := 0
	for _, ing := range r.Ingredients {
		if ing.Real {
			n++
		}
	}
	return n
}

// BakeAtMass returns a copy of the recipe rescaled so its total mass rate
// equals mass, preserving ingredient order and relative proportions.
// A recipe with zero mass rate is returned unchanged.
func (r Recipe) BakeAtMass(mass float64) Recipe {
	base := r.MassRate()
	if base == 0 {
		return r
	}
	scale := mass / base
	out := Recipe{
		Ingredients: make([]Ingredient, len(r.Ingredients)),
		Provenance:  r.Provenance,
	}
	for i, ing := range r.Ingredients {
		ing.Ratio *= scale
		out.Ingredients[i] = ing
	}
	return out
}

// ConverterRecipe is a recipe template parameterized by efficiency.
// Efficiency-baking at e in [0,1] scales every ingredient ratio linearly;
// mass-baking (Recipe.BakeAtMass) rescales one side to an absolute mass flow.
// The two bake axes are independent: efficiency bakes are cached by the
// converter, mass bakes happen on every rate recompute.
type ConverterRecipe struct {
	Name        string
	Inputs      []Ingredient
	Outputs     []Ingredient
	Fingerprint string // registry fingerprint the template was loaded under
}

// BakedRecipe is the result of an efficiency bake: concrete input and output
// recipes with absolute kg/s ratios.
type BakedRecipe struct {
	Inputs     Recipe
	Outputs    Recipe
	Efficiency float64
}

// Bake produces concrete input/output recipes for the given efficiency.
// Efficiency outside [0,1] is clamped.
func (c ConverterRecipe) Bake(efficiency float64) BakedRecipe {
	if efficiency < 0 {
		efficiency = 0
	} else if efficiency > 1 {
		efficiency = 1
	}
	prov := BakeInfo{Efficiency: efficiency, Fingerprint: c.Fingerprint}
	return BakedRecipe{
		Inputs:     bakeSide(c.Inputs, efficiency, prov),
		Outputs:    bakeSide(c.Outputs, efficiency, prov),
		Efficiency: efficiency,
	}
}

func bakeSide(side []Ingredient, efficiency float64, prov BakeInfo) Recipe {
	r := Recipe{
		Ingredients: make([]Ingredient, len(side)),
		Provenance:  prov,
	}
	for i, ing := range side {
		ing.Ratio *= efficiency
		r.Ingredients[i] = ing
	}
	return r
}
