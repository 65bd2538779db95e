// recipecheck validates a recipe file and prints each recipe's rated
// description. Exits non-zero when the file is invalid or a requested recipe
// is missing.
//
// Usage:
//
//	recipecheck [-recipes path] [recipe ...]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/orbitalworks/refinery/internal/data"
	"github.com/orbitalworks/refinery/internal/game/converter"
)

func main() {
	recipesPath := flag.String("recipes", "", "recipe YAML file (empty = built-in set)")
	rate := flag.Float64("rate", 1, "flow-rate multiplier for rated numbers")
	flag.Parse()

	if err := run(*recipesPath, *rate, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "recipecheck: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, rate float64, names []string) error {
	registry, err := data.LoadRecipes(path)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		names = registry.Names()
	}

	var missing int
	for i, name := range names {
		if i > 0 {
			fmt.Println()
		}

		conv := converter.New(converter.Config{RecipeName: name, Rate: rate})
		if !conv.Resolve(registry) {
			missing++
		}
		fmt.Print(conv.Describe())
	}

	fmt.Printf("\n%d recipes checked, fingerprint %s\n", len(names), registry.Fingerprint())
	if missing > 0 {
		return fmt.Errorf("%d recipes not found", missing)
	}
	return nil
}
