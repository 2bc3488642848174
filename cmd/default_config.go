package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	sim "github.com/trafficjam-sim/trafficjam/sim"
)

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version string            `yaml:"version"`
	Presets map[string]Preset `yaml:"presets"`
}

// Preset is a named road. The road section is kept as a raw node and decoded
// strictly on top of sim.DefaultRoadConfig, so keys omitted in the file keep
// their default values.
type Preset struct {
	Description string    `yaml:"description"`
	Road        yaml.Node `yaml:"road"`
}

// RoadConfig decodes the preset's road section.
func (p Preset) RoadConfig() (sim.RoadConfig, error) {
	if p.Road.IsZero() {
		return sim.DefaultRoadConfig(), nil
	}
	data, err := yaml.Marshal(&p.Road)
	if err != nil {
		return sim.RoadConfig{}, err
	}
	return sim.DecodeRoadConfig(bytes.NewReader(data), sim.DefaultRoadConfig())
}

// loadDefaultsConfig parses defaults.yaml into a Config struct.
// Uses strict field checking: typos must cause errors.
func loadDefaultsConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading defaults file: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return cfg, nil
}

// LookupPreset returns the road configuration of the named preset.
func LookupPreset(defaultsFilePath, name string) (sim.RoadConfig, error) {
	cfg, err := loadDefaultsConfig(defaultsFilePath)
	if err != nil {
		return sim.RoadConfig{}, err
	}
	preset, ok := cfg.Presets[name]
	if !ok {
		return sim.RoadConfig{}, fmt.Errorf("unknown preset %q; available: %v", name, presetNames(cfg))
	}
	road, err := preset.RoadConfig()
	if err != nil {
		return sim.RoadConfig{}, fmt.Errorf("preset %q: %w", name, err)
	}
	return road, nil
}

func presetNames(cfg Config) []string {
	names := make([]string, 0, len(cfg.Presets))
	for name := range cfg.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
