package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds named presets that bundle a mode, volume, sample rate,
// and calibration choice under a short name the CLI's -preset flag
// can reference, so a station can keep a handful of house defaults in
// one file instead of repeating flags on every run.
type Config struct {
	Presets map[string]Preset `yaml:"presets"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// Preset bundles the encoding flags the CLI otherwise takes individually.
type Preset struct {
	Mode        string `yaml:"mode"`
	Volume      int    `yaml:"volume"`               // 0-100
	SampleRate  int    `yaml:"sample_rate"`          // Hz
	Calibration *bool  `yaml:"calibration,omitempty"` // nil means "use the CLI default"
	Resample    string `yaml:"resample,omitempty"`   // "lanczos3" or "nearest"
}

// MetricsConfig controls the optional Prometheus exporter. The CLI
// reads it only when -config is given together with -preset.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9107"; used when -metrics-addr is not given
}

// LoadConfig loads preset definitions from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// Lookup resolves a preset by name, reporting whether it exists.
func (c *Config) Lookup(name string) (Preset, bool) {
	if c == nil {
		return Preset{}, false
	}
	p, ok := c.Presets[name]
	return p, ok
}
