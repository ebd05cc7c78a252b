package laa

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// bundleValidate checks the struct tags on EngineBundle sections.
var bundleValidate = validator.New()

// EngineBundle holds construction parameters for every engine, loadable from
// a YAML file. Nil pointer fields mean "not set in YAML"; callers fall back
// to their own defaults (CLI flags) for those.
type EngineBundle struct {
	SkiRental  SkiRentalBundle  `yaml:"ski_rental"`
	Adaptive   AdaptiveBundle   `yaml:"adaptive_ski_rental"`
	Caching    CachingBundle    `yaml:"caching"`
	Trading    TradingBundle    `yaml:"oneway_trading"`
	Scheduling SchedulingBundle `yaml:"scheduling"`
}

// SkiRentalBundle configures the deterministic and randomized ski-rental engines.
type SkiRentalBundle struct {
	BuyCost    *float64 `yaml:"buy_cost" validate:"omitempty,gt=0"`
	Trust      *float64 `yaml:"trust" validate:"omitempty,gte=0,lte=1"`
	Randomized bool     `yaml:"randomized"`
}

// AdaptiveBundle configures the adaptive ski-rental engine.
type AdaptiveBundle struct {
	BuyCost      *float64 `yaml:"buy_cost" validate:"omitempty,gt=0"`
	InitialTrust *float64 `yaml:"initial_trust" validate:"omitempty,gte=0,lte=1"`
	LearningRate *float64 `yaml:"learning_rate" validate:"omitempty,gte=0"`
}

// CachingBundle configures the caching engine.
type CachingBundle struct {
	CacheSize        *int              `yaml:"cache_size" validate:"omitempty,gt=0"`
	Predictions      map[ItemID]uint32 `yaml:"predictions"`
	CountInsertAsHit bool              `yaml:"count_insert_as_hit"`
}

// TradingBundle configures the one-way trading engine.
type TradingBundle struct {
	BuyPrice *float64 `yaml:"buy_price" validate:"omitempty,gt=0"`
	Trust    *float64 `yaml:"trust" validate:"omitempty,gte=0,lte=1"`
}

// SchedulingBundle configures the scheduling engine.
type SchedulingBundle struct {
	NumMachines *int `yaml:"num_machines" validate:"omitempty,gt=0"`
}

// LoadEngineBundle reads and parses a YAML engine configuration file.
// Unknown fields are rejected so typos surface as errors.
func LoadEngineBundle(path string) (*EngineBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading engine config: %w", err)
	}
	var bundle EngineBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing engine config: %w", err)
	}
	return &bundle, nil
}

// Validate checks parameter ranges in the bundle.
// Every failure wraps ErrInvalidConfiguration.
func (b *EngineBundle) Validate() error {
	if err := bundleValidate.Struct(b); err != nil {
		return fmt.Errorf("engine config: %v: %w", err, ErrInvalidConfiguration)
	}
	return nil
}

// AdaptiveConfig merges the bundle's adaptive section over DefaultAdaptiveConfig.
func (b *EngineBundle) AdaptiveConfig() AdaptiveConfig {
	cfg := DefaultAdaptiveConfig()
	if b.Adaptive.InitialTrust != nil {
		cfg.InitialTrust = *b.Adaptive.InitialTrust
	}
	if b.Adaptive.LearningRate != nil {
		cfg.LearningRate = *b.Adaptive.LearningRate
	}
	return cfg
}
