// Package data holds the converter recipe registry: YAML-defined recipe
// templates keyed by name, with a content fingerprint so bakes can record
// which recipe set produced them.
package data

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

//go:embed recipes_default.yaml
var defaultRecipesYAML []byte

// recipeDef is the internal stored form of a recipe template.
type recipeDef struct {
	name    string
	inputs  []ingredientDef
	outputs []ingredientDef
}

type ingredientDef struct {
	name        string
	ratio       float64 // kg/s at full efficiency
	density     float64 // kg per storage unit, 0 = unit-less
	heat        float64 // MJ/kg
	virtual     bool
	discardable bool
}

// YAML wire format.
type recipeFile struct {
	Recipes []recipeYAML `yaml:"recipes"`
}

type recipeYAML struct {
	Name    string           `yaml:"name"`
	Inputs  []ingredientYAML `yaml:"inputs"`
	Outputs []ingredientYAML `yaml:"outputs"`
}

type ingredientYAML struct {
	Resource    string  `yaml:"resource"`
	Ratio       float64 `yaml:"ratio"`
	Density     float64 `yaml:"density"`
	Heat        float64 `yaml:"heat"`
	Virtual     bool    `yaml:"virtual"`
	Discardable bool    `yaml:"discardable"`
}

// Registry is the loaded recipe table. Reload swaps the whole table
// atomically under the lock, so readers never observe a half-loaded set.
type Registry struct {
	mu          sync.RWMutex
	recipes     map[string]*recipeDef
	order       []string
	fingerprint string
	path        string

	// refBakes memoizes reference-efficiency bakes per recipe name.
	// Flushed on every reload.
	refBakes *gocache.Cache
}

// LoadRecipes loads a recipe registry from the YAML file at path.
// An empty path loads the built-in recipe set.
func LoadRecipes(path string) (*Registry, error) {
	r := &Registry{
		path:     path,
		refBakes: gocache.New(5*time.Minute, 10*time.Minute),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the registry's source file and swaps in the new table.
// On parse or validation failure the previous table stays active.
func (r *Registry) Reload() error {
	raw := defaultRecipesYAML
	if r.path != "" {
		b, err := os.ReadFile(r.path)
		if err != nil {
			return fmt.Errorf("reading recipe file %s: %w", r.path, err)
		}
		raw = b
	}

	recipes, order, err := parseRecipes(raw)
	if err != nil {
		return err
	}

	sum := blake2b.Sum256(raw)
	fp := hex.EncodeToString(sum[:8])

	r.mu.Lock()
	r.recipes = recipes
	r.order = order
	r.fingerprint = fp
	r.mu.Unlock()
	r.refBakes.Flush()

	slog.Info("loaded recipes", "count", len(recipes), "fingerprint", fp)
	return nil
}

func parseRecipes(raw []byte) (map[string]*recipeDef, []string, error) {
	var file recipeFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parsing recipe file: %w", err)
	}

	recipes := make(map[string]*recipeDef, len(file.Recipes))
	order := make([]string, 0, len(file.Recipes))
	for i := range file.Recipes {
		def, err := recipeFromYAML(&file.Recipes[i])
		if err != nil {
			return nil, nil, err
		}
		if _, dup := recipes[def.name]; dup {
			return nil, nil, fmt.Errorf("duplicate recipe %q", def.name)
		}
		recipes[def.name] = def
		order = append(order, def.name)
	}
	return recipes, order, nil
}

func recipeFromYAML(y *recipeYAML) (*recipeDef, error) {
	if y.Name == "" {
		return nil, fmt.Errorf("recipe without a name")
	}
	if len(y.Inputs) == 0 && len(y.Outputs) == 0 {
		return nil, fmt.Errorf("recipe %q has no ingredients", y.Name)
	}

	def := &recipeDef{
		name:    y.Name,
		inputs:  make([]ingredientDef, len(y.Inputs)),
		outputs: make([]ingredientDef, len(y.Outputs)),
	}
	for i, ing := range y.Inputs {
		d, err := ingredientFromYAML(y.Name, ing)
		if err != nil {
			return nil, err
		}
		def.inputs[i] = d
	}
	for i, ing := range y.Outputs {
		d, err := ingredientFromYAML(y.Name, ing)
		if err != nil {
			return nil, err
		}
		def.outputs[i] = d
	}
	return def, nil
}

func ingredientFromYAML(recipe string, y ingredientYAML) (ingredientDef, error) {
	if y.Resource == "" {
		return ingredientDef{}, fmt.Errorf("recipe %q: ingredient without a resource name", recipe)
	}
	if y.Ratio < 0 {
		return ingredientDef{}, fmt.Errorf("recipe %q: ingredient %q has negative ratio", recipe, y.Resource)
	}
	if y.Density < 0 {
		return ingredientDef{}, fmt.Errorf("recipe %q: ingredient %q has negative density", recipe, y.Resource)
	}
	return ingredientDef{
		name:        y.Resource,
		ratio:       y.Ratio,
		density:     y.Density,
		heat:        y.Heat,
		virtual:     y.Virtual,
		discardable: y.Discardable,
	}, nil
}
