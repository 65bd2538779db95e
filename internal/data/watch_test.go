package data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeRecipeFile(t, testRecipesYAML)
	reg, err := LoadRecipes(path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- reg.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to attach before touching the file.
	time.Sleep(200 * time.Millisecond)

	updated := `
recipes:
  - name: test_smelt
    inputs:
      - {resource: Ore, ratio: 6, density: 1000}
    outputs:
      - {resource: Metal, ratio: 3, density: 500}
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("watcher did not report the change in time")
	}

	tmpl, ok := reg.ConverterRecipe("test_smelt")
	require.True(t, ok)
	assert.Equal(t, 6.0, tmpl.Inputs[0].Ratio)

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_BuiltinRegistryBlocksUntilCancel(t *testing.T) {
	t.Parallel()

	reg, err := LoadRecipes("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Watch(ctx, nil) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
