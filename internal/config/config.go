// Package config loads benchmark run configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds a run configuration: YAML file contents merged over package
// defaults. Values are looked up with typed getters.
type Config struct {
	values map[string]any
}

// Defaults returns the baseline configuration every run starts from.
func Defaults() *Config {
	return &Config{values: map[string]any{
		"seed":              12345,
		"r_max":             4.0,
		"num_layers":        3,
		"num_features":      16,
		"num_basis":         8,
		"jit_bailout_depth": 2,
	}}
}

// Load reads a YAML configuration file and merges it over Defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	parsed := map[string]any{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg := Defaults()
	for k, v := range parsed {
		cfg.values[k] = v
	}
	return cfg, nil
}

// Has reports whether a key is present (including defaults).
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Set overrides a single value. Used by tests and programmatic callers.
func (c *Config) Set(key string, value any) {
	c.values[key] = value
}

// GetString returns the string value for key, or fallback if absent.
func (c *Config) GetString(key, fallback string) string {
	if v, ok := c.values[key].(string); ok {
		return v
	}
	return fallback
}

// GetInt returns the integer value for key, or fallback if absent.
// YAML integers may decode as int or int64 depending on magnitude.
func (c *Config) GetInt(key string, fallback int) int {
	switch v := c.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// GetInt64 returns the 64-bit integer value for key, or fallback if absent.
func (c *Config) GetInt64(key string, fallback int64) int64 {
	switch v := c.values[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return fallback
}

// GetFloat returns the float value for key, or fallback if absent.
func (c *Config) GetFloat(key string, fallback float64) float64 {
	switch v := c.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}
