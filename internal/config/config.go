// Package config loads the optional YAML options file accepted by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the user-adjustable compilation options.
type Config struct {
	// Top overrides the top-level module selection.
	Top string `yaml:"top"`
	// Layout toggles coordinate annotation in the emitted document.
	Layout bool `yaml:"layout"`
	// PortMaps adds or overrides formal-to-display port-name mappings per
	// cell type.
	PortMaps map[string]map[string]string `yaml:"portmaps"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Layout: true}
}

// Load reads the YAML file at path on top of the defaults. Unknown keys are
// rejected so typos surface instead of being ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
