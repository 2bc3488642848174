package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// TimeAccounting selects how often the engine clock advances.
type TimeAccounting string

const (
	// TimeAccountingPerCar advances the clock by dt after every car processed,
	// i.e. nb_cars times per Step.
	TimeAccountingPerCar TimeAccounting = "per-car"
	// TimeAccountingPerTick advances the clock by dt once per Step.
	TimeAccountingPerTick TimeAccounting = "per-tick"
)

var validTimeAccounting = map[TimeAccounting]bool{
	TimeAccountingPerCar:  true,
	TimeAccountingPerTick: true,
	"":                    true, // empty defaults to per-car
}

// IsValidTimeAccounting returns true if name is a recognized time accounting mode.
func IsValidTimeAccounting(name string) bool {
	return validTimeAccounting[TimeAccounting(name)]
}

// RoadConfig groups every parameter accepted at initialization.
type RoadConfig struct {
	Length         int            `yaml:"length"`          // number of cells on the circular road (must be > 0)
	NumCars        int            `yaml:"nb_cars"`         // number of cars (must be in [1, Length])
	VMax           int            `yaml:"vmax"`            // velocity cap in cells per tick (must be >= 1)
	TMax           float64        `yaml:"tmax"`            // the run stops once the clock reaches tmax
	DT             float64        `yaml:"dt"`              // clock increment
	ProbaSlow      float64        `yaml:"proba_slow"`      // per-car per-tick braking probability in [0, 1]
	Seed           int64          `yaml:"seed"`            // master RNG seed
	TimeAccounting TimeAccounting `yaml:"time_accounting"` // "per-car" (default) or "per-tick"
}

// DefaultRoadConfig returns the configuration of the reference road.
func DefaultRoadConfig() RoadConfig {
	return RoadConfig{
		Length:         100,
		NumCars:        15,
		VMax:           3,
		TMax:           200,
		DT:             0.1,
		ProbaSlow:      0.25,
		TimeAccounting: TimeAccountingPerCar,
	}
}

// NewRoadConfig creates a RoadConfig from the six model parameters.
// Seed and TimeAccounting are left at their zero values.
func NewRoadConfig(length, numCars, vmax int, tmax, dt, probaSlow float64) RoadConfig {
	return RoadConfig{
		Length:    length,
		NumCars:   numCars,
		VMax:      vmax,
		TMax:      tmax,
		DT:        dt,
		ProbaSlow: probaSlow,
	}
}

// Accounting returns the effective time accounting mode.
func (c RoadConfig) Accounting() TimeAccounting {
	if c.TimeAccounting == "" {
		return TimeAccountingPerCar
	}
	return c.TimeAccounting
}

// Density returns the fraction of cells occupied by a car.
func (c RoadConfig) Density() float64 {
	if c.Length <= 0 {
		return 0
	}
	return float64(c.NumCars) / float64(c.Length)
}

// ConfigurationError reports an invalid RoadConfig field.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks that all fields are usable. The first violation found is
// returned as a *ConfigurationError.
func (c RoadConfig) Validate() error {
	if c.Length <= 0 {
		return &ConfigurationError{Field: "length", Value: c.Length, Reason: "must be positive"}
	}
	if c.NumCars <= 0 {
		return &ConfigurationError{Field: "nb_cars", Value: c.NumCars, Reason: "must be positive"}
	}
	if c.NumCars > c.Length {
		return &ConfigurationError{Field: "nb_cars", Value: c.NumCars,
			Reason: fmt.Sprintf("cannot place more cars than the %d cells of the road", c.Length)}
	}
	if c.VMax < 1 {
		return &ConfigurationError{Field: "vmax", Value: c.VMax, Reason: "must be at least 1"}
	}
	if err := validateFinitePositive("tmax", c.TMax); err != nil {
		return err
	}
	if err := validateFinitePositive("dt", c.DT); err != nil {
		return err
	}
	if math.IsNaN(c.ProbaSlow) || c.ProbaSlow < 0 || c.ProbaSlow > 1 {
		return &ConfigurationError{Field: "proba_slow", Value: c.ProbaSlow, Reason: "must be in [0, 1]"}
	}
	if !validTimeAccounting[c.TimeAccounting] {
		return &ConfigurationError{Field: "time_accounting", Value: c.TimeAccounting,
			Reason: "valid: per-car, per-tick"}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return &ConfigurationError{Field: name, Value: val, Reason: "must be a finite number"}
	}
	if val <= 0 {
		return &ConfigurationError{Field: name, Value: val, Reason: "must be positive"}
	}
	return nil
}

// LoadRoadConfig reads a YAML road configuration from path. Keys absent from
// the file keep the values of base. Uses strict parsing: unrecognized keys
// (typos) are rejected. The result is not validated.
func LoadRoadConfig(path string, base RoadConfig) (RoadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RoadConfig{}, fmt.Errorf("reading road config: %w", err)
	}
	cfg, err := DecodeRoadConfig(bytes.NewReader(data), base)
	if err != nil {
		return RoadConfig{}, fmt.Errorf("parsing road config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeRoadConfig decodes a YAML road configuration on top of base.
// An empty document returns base unchanged.
func DecodeRoadConfig(r io.Reader, base RoadConfig) (RoadConfig, error) {
	cfg := base
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RoadConfig{}, err
	}
	return cfg, nil
}
