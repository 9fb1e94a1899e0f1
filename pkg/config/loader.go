package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Read the YAML file
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in defaults underneath user values
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(_ context.Context, path string) (*Config, error) {
	log := slog.With("config_file", path)
	log.Info("Initializing configuration")

	cfg, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("Configuration initialized successfully",
		"stages", len(cfg.Stages),
		"providers", len(cfg.Providers),
		"cost_cap_usd", cfg.Budget.CostCapUSD)

	return cfg, nil
}

// load is the internal loader (not exported)
func load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewLoadError(path, err)
	}

	expanded := ExpandEnv(raw)

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	// Fill unset fields from the built-in defaults (user values win).
	defaults := builtinDefaults()
	if err := mergo.Merge(&cfg, defaults); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("failed to merge defaults: %w", err))
	}

	applyStageDefaults(cfg.Stages)

	return &cfg, nil
}

// applyStageDefaults fills per-stage display names from roles.
func applyStageDefaults(stages []StageConfig) {
	for i := range stages {
		if stages[i].Name == "" {
			stages[i].Name = stages[i].Role.String()
		}
	}
}
