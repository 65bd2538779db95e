package data

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/orbitalworks/refinery/internal/model"
)

// ReferenceEfficiency is the fixed efficiency used for rated-throughput
// display bakes, independent of current temperature.
const ReferenceEfficiency = 0.5

// ConverterRecipe returns the exported template for a recipe by name.
// The second return is false when the name is unknown.
func (r *Registry) ConverterRecipe(name string) (model.ConverterRecipe, bool) {
	r.mu.RLock()
	def := r.recipes[name]
	fp := r.fingerprint
	r.mu.RUnlock()
	if def == nil {
		return model.ConverterRecipe{}, false
	}
	return recipeDefToTemplate(def, fp), true
}

// ReferenceBake returns the recipe baked at ReferenceEfficiency.
// Results are memoized until the registry reloads.
func (r *Registry) ReferenceBake(name string) (model.BakedRecipe, bool) {
	if v, ok := r.refBakes.Get(name); ok {
		return v.(model.BakedRecipe), true
	}
	tmpl, ok := r.ConverterRecipe(name)
	if !ok {
		return model.BakedRecipe{}, false
	}
	baked := tmpl.Bake(ReferenceEfficiency)
	r.refBakes.Set(name, baked, gocache.DefaultExpiration)
	return baked, true
}

// Names returns all recipe names in file order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Fingerprint returns the content fingerprint of the loaded recipe set.
func (r *Registry) Fingerprint() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fingerprint
}

// Count returns the number of loaded recipes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}

func recipeDefToTemplate(def *recipeDef, fingerprint string) model.ConverterRecipe {
	return model.ConverterRecipe{
		Name:        def.name,
		Inputs:      ingredientDefsToModel(def.inputs),
		Outputs:     ingredientDefsToModel(def.outputs),
		Fingerprint: fingerprint,
	}
}

func ingredientDefsToModel(defs []ingredientDef) []model.Ingredient {
	out := make([]model.Ingredient, len(defs))
	for i, d := range defs {
		out[i] = model.Ingredient{
			Name:        d.name,
			Ratio:       d.ratio,
			Density:     d.density,
			Heat:        d.heat,
			Real:        !d.virtual,
			Discardable: d.discardable,
		}
	}
	return out
}
