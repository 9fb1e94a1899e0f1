// Package config loads, validates, and exposes the bridge configuration.
// Paths, the stage list, and the cost cap are resolved once at startup and
// threaded through the executor as a struct, never read from the
// environment at call time.
package config

import "github.com/symbioza/bridge/pkg/pricing"

// StageConfig is the immutable description of one pipeline step.
type StageConfig struct {
	// Role determines the stage's instructions and its key in accounting
	// output (required).
	Role StageRole `yaml:"role" validate:"required"`

	// Name is the display name. Defaults to the role.
	Name string `yaml:"name,omitempty"`

	// Provider names an entry in the providers section (required).
	Provider string `yaml:"provider" validate:"required"`

	// Model is the pricing table key sent to the provider (required).
	Model string `yaml:"model" validate:"required"`

	// Temperature in [0,2].
	Temperature float64 `yaml:"temperature"`

	// TopP in [0,1].
	TopP float64 `yaml:"top_p"`

	// MaxOutputTokens caps the stage's response length. nil means the
	// provider default applies and projection assumes its own default cap.
	MaxOutputTokens *int `yaml:"max_output_tokens,omitempty" validate:"omitempty,min=1"`
}

// ProviderConfig describes one model endpoint shared by stages.
type ProviderConfig struct {
	// APIKeyEnv is the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// BaseURL overrides the endpoint for OpenAI-protocol providers
	// (e.g. groq).
	BaseURL string `yaml:"base_url,omitempty"`
}

// HistoryConfig groups conversation history settings.
type HistoryConfig struct {
	// Dir is the directory of per-conversation jsonl files.
	Dir string `yaml:"dir,omitempty"`

	// MaxTokens is the token budget history is trimmed to before prompt
	// assembly (must be positive).
	MaxTokens int `yaml:"max_tokens,omitempty" validate:"min=1"`
}

// PersonaConfig groups persona directive settings.
type PersonaConfig struct {
	// Dir is the directory of per-persona txt files.
	Dir string `yaml:"dir,omitempty"`
}

// BudgetConfig groups spend control settings.
type BudgetConfig struct {
	// CostCapUSD is the maximum projected cost per request. Requests
	// projecting above the cap are rejected before any stage runs.
	CostCapUSD float64 `yaml:"cost_cap_usd" validate:"min=0"`
}

// CostLogConfig groups accounting log settings.
type CostLogConfig struct {
	// Path of the append-only line-delimited JSON cost log.
	Path string `yaml:"path,omitempty"`
}

// Config is the fully loaded and validated bridge configuration.
type Config struct {
	Stages    []StageConfig                   `yaml:"stages"`
	Providers map[string]ProviderConfig       `yaml:"providers"`
	Pricing   map[string]pricing.ModelPricing `yaml:"pricing,omitempty"`
	Budget    BudgetConfig                    `yaml:"budget"`
	History   HistoryConfig                   `yaml:"history"`
	Persona   PersonaConfig                   `yaml:"persona"`
	CostLog   CostLogConfig                   `yaml:"cost_log"`
}

// PricingTable builds the pricing table for this configuration. Entries in
// the pricing section override the defaults; models absent from both are
// unpriced and fail at request time.
func (c *Config) PricingTable() *pricing.Table {
	if len(c.Pricing) == 0 {
		return pricing.NewTable(nil)
	}
	merged := make(map[string]pricing.ModelPricing, len(pricing.DefaultPricing)+len(c.Pricing))
	for k, v := range pricing.DefaultPricing {
		merged[k] = v
	}
	for k, v := range c.Pricing {
		merged[k] = v
	}
	return pricing.NewTable(merged)
}
