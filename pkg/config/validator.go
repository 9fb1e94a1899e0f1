package config

import "fmt"

// ConfigValidator validates configuration comprehensively with clear error messages
type ConfigValidator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast - stops at first error)
func (v *ConfigValidator) ValidateAll() error {
	if err := v.validateStages(); err != nil {
		return fmt.Errorf("stage validation failed: %w", err)
	}

	if err := v.validateBudget(); err != nil {
		return fmt.Errorf("budget validation failed: %w", err)
	}

	if err := v.validateState(); err != nil {
		return fmt.Errorf("state validation failed: %w", err)
	}

	return nil
}

func (v *ConfigValidator) validateStages() error {
	if len(v.cfg.Stages) == 0 {
		return NewValidationError("pipeline", "stages", "", fmt.Errorf("%w: at least one stage required", ErrMissingRequiredField))
	}

	for i, stage := range v.cfg.Stages {
		id := fmt.Sprintf("%d", i)
		if stage.Name != "" {
			id = stage.Name
		}

		if !stage.Role.IsValid() {
			return NewValidationError("stage", id, "role", fmt.Errorf("%w: %q", ErrInvalidValue, stage.Role))
		}
		if stage.Provider == "" {
			return NewValidationError("stage", id, "provider", ErrMissingRequiredField)
		}
		if _, exists := v.cfg.Providers[stage.Provider]; !exists {
			return NewValidationError("stage", id, "provider", fmt.Errorf("%w: %q", ErrProviderNotFound, stage.Provider))
		}
		if stage.Model == "" {
			return NewValidationError("stage", id, "model", ErrMissingRequiredField)
		}
		if stage.Temperature < 0 || stage.Temperature > 2 {
			return NewValidationError("stage", id, "temperature", fmt.Errorf("%w: must be in [0,2], got %v", ErrInvalidValue, stage.Temperature))
		}
		if stage.TopP < 0 || stage.TopP > 1 {
			return NewValidationError("stage", id, "top_p", fmt.Errorf("%w: must be in [0,1], got %v", ErrInvalidValue, stage.TopP))
		}
		if stage.MaxOutputTokens != nil && *stage.MaxOutputTokens < 1 {
			return NewValidationError("stage", id, "max_output_tokens", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
		}
	}

	return nil
}

func (v *ConfigValidator) validateBudget() error {
	if v.cfg.Budget.CostCapUSD < 0 {
		return NewValidationError("budget", "cost_cap_usd", "", fmt.Errorf("%w: must be >= 0", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateState() error {
	if v.cfg.History.MaxTokens < 1 {
		return NewValidationError("history", "max_tokens", "", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if v.cfg.History.Dir == "" {
		return NewValidationError("history", "dir", "", ErrMissingRequiredField)
	}
	if v.cfg.Persona.Dir == "" {
		return NewValidationError("persona", "dir", "", ErrMissingRequiredField)
	}
	if v.cfg.CostLog.Path == "" {
		return NewValidationError("cost_log", "path", "", ErrMissingRequiredField)
	}
	return nil
}
