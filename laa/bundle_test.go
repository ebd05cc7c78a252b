package laa

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEngineBundle_ValidYAML(t *testing.T) {
	yaml := `
ski_rental:
  buy_cost: 100
  trust: 0.8
  randomized: true
adaptive_ski_rental:
  buy_cost: 50
  initial_trust: 0.2
  learning_rate: 0.1
caching:
  cache_size: 3
  predictions:
    1: 10
    2: 5
  count_insert_as_hit: true
oneway_trading:
  buy_price: 90.5
  trust: 0.25
scheduling:
  num_machines: 4
`
	bundle, err := LoadEngineBundle(writeTempYAML(t, yaml))
	require.NoError(t, err)
	require.NoError(t, bundle.Validate())

	require.NotNil(t, bundle.SkiRental.BuyCost)
	assert.Equal(t, 100.0, *bundle.SkiRental.BuyCost)
	assert.Equal(t, 0.8, *bundle.SkiRental.Trust)
	assert.True(t, bundle.SkiRental.Randomized)

	assert.Equal(t, 50.0, *bundle.Adaptive.BuyCost)
	assert.Equal(t, AdaptiveConfig{InitialTrust: 0.2, LearningRate: 0.1}, bundle.AdaptiveConfig())

	assert.Equal(t, 3, *bundle.Caching.CacheSize)
	assert.Equal(t, map[ItemID]uint32{1: 10, 2: 5}, bundle.Caching.Predictions)
	assert.True(t, bundle.Caching.CountInsertAsHit)

	assert.Equal(t, 90.5, *bundle.Trading.BuyPrice)
	assert.Equal(t, 0.25, *bundle.Trading.Trust)
	assert.Equal(t, 4, *bundle.Scheduling.NumMachines)
}

func TestLoadEngineBundle_UnsetFieldsStayNil(t *testing.T) {
	bundle, err := LoadEngineBundle(writeTempYAML(t, "scheduling:\n  num_machines: 2\n"))
	require.NoError(t, err)
	assert.Nil(t, bundle.SkiRental.BuyCost)
	assert.Nil(t, bundle.Caching.CacheSize)
	assert.Equal(t, DefaultAdaptiveConfig(), bundle.AdaptiveConfig())
	assert.NoError(t, bundle.Validate())
}

func TestLoadEngineBundle_UnknownFieldRejected(t *testing.T) {
	_, err := LoadEngineBundle(writeTempYAML(t, "ski_rental:\n  buy_costs: 100\n"))
	assert.Error(t, err)
}

func TestLoadEngineBundle_MissingFile(t *testing.T) {
	_, err := LoadEngineBundle(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEngineBundle_Validate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero buy cost", "ski_rental:\n  buy_cost: 0\n"},
		{"trust above one", "ski_rental:\n  trust: 1.5\n"},
		{"negative learning rate", "adaptive_ski_rental:\n  learning_rate: -0.1\n"},
		{"zero cache size", "caching:\n  cache_size: 0\n"},
		{"negative buy price", "oneway_trading:\n  buy_price: -1\n"},
		{"zero machines", "scheduling:\n  num_machines: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := LoadEngineBundle(writeTempYAML(t, tt.yaml))
			require.NoError(t, err)
			err = bundle.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}
