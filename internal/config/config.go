// Package config loads the bagsakan.toml configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the bagsakan configuration.
type Config struct {
	ValidatorPattern string `toml:"validatorPattern"`
	SourceFiles      string `toml:"sourceFiles"`
	ValidatorFile    string `toml:"validatorFile"`
	UseJsExtensions  bool   `toml:"useJsExtensions"`

	FollowExternalImports bool     `toml:"followExternalImports"`
	ExcludePackages       []string `toml:"excludePackages"`
	Conditions            []string `toml:"conditions"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ValidatorPattern:      "validate%(type)",
		SourceFiles:           "src/**/*.ts",
		ValidatorFile:         "src/validators.ts",
		UseJsExtensions:       false,
		FollowExternalImports: true,
		ExcludePackages:       []string{},
		Conditions:            []string{},
	}
}

// Load reads and parses a bagsakan config file. If path does not exist, the
// defaults are returned unchanged rather than treated as a ConfigError.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &config, nil
		}
		return nil, fmt.Errorf("failed to stat config file %q: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	return &config, nil
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if c.ValidatorPattern == "" {
		return fmt.Errorf("validatorPattern must not be empty")
	}
	if !contains(c.ValidatorPattern, "%(type)") {
		return fmt.Errorf("validatorPattern must contain the %%(type) placeholder")
	}
	if c.SourceFiles == "" {
		return fmt.Errorf("sourceFiles must not be empty")
	}
	if c.ValidatorFile == "" {
		return fmt.Errorf("validatorFile must not be empty")
	}
	return nil
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
