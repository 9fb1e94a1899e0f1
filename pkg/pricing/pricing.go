// Package pricing maps model identifiers to per-token prices and computes
// the dollar cost of individual model calls.
package pricing

import (
	"errors"
	"fmt"
	"sync"
)

// ErrModelNotPriced indicates a model has no entry in the pricing table.
// Surfaced as a configuration error: every model a stage can report must
// be priced before the pipeline is allowed to bill for it.
var ErrModelNotPriced = errors.New("model not found in pricing table")

// ModelPricing holds the cost per one million tokens for a model.
type ModelPricing struct {
	InputUSDPerMtok  float64 `yaml:"input_usd_per_mtok"`
	OutputUSDPerMtok float64 `yaml:"output_usd_per_mtok"`
}

// DefaultPricing lists the models the bridge pipeline ships configured for.
// Prices are USD per million tokens.
var DefaultPricing = map[string]ModelPricing{
	"llama-3.1-8b":  {InputUSDPerMtok: 0.05, OutputUSDPerMtok: 0.08},
	"llama-3.3-70b": {InputUSDPerMtok: 0.59, OutputUSDPerMtok: 0.79},
	"gpt-4o-mini":   {InputUSDPerMtok: 0.15, OutputUSDPerMtok: 0.60},
	"gpt-4o":        {InputUSDPerMtok: 2.50, OutputUSDPerMtok: 10.00},
}

// Table is a read-only pricing lookup shared by the projector and the
// executor (thread-safe).
type Table struct {
	models map[string]ModelPricing
	mu     sync.RWMutex
}

// NewTable creates a pricing table. A nil map yields the default pricing.
func NewTable(models map[string]ModelPricing) *Table {
	if models == nil {
		models = DefaultPricing
	}
	// Defensive copy to prevent external mutation
	copied := make(map[string]ModelPricing, len(models))
	for k, v := range models {
		copied[k] = v
	}
	return &Table{models: copied}
}

// Get retrieves pricing for a model (thread-safe).
func (t *Table) Get(model string) (ModelPricing, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, exists := t.models[model]
	if !exists {
		return ModelPricing{}, fmt.Errorf("%w: %s", ErrModelNotPriced, model)
	}
	return p, nil
}

// Has checks if a model is priced (thread-safe).
func (t *Table) Has(model string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, exists := t.models[model]
	return exists
}

// Cost computes the USD cost of one call: (in·p_in + out·p_out) / 1e6.
func (t *Table) Cost(model string, inputTokens, outputTokens int) (float64, error) {
	p, err := t.Get(model)
	if err != nil {
		return 0, err
	}
	return (float64(inputTokens)*p.InputUSDPerMtok + float64(outputTokens)*p.OutputUSDPerMtok) / 1_000_000, nil
}
