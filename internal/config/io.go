package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration Load would produce with no file and
// an empty environment.
func Default() *Config {
	v := newDefaults()
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Save writes cfg as yaml. Secrets are left out by their omitempty tags
// when they are unset.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
