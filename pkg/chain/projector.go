package chain

import (
	"math"

	"github.com/symbioza/bridge/pkg/llm"
	"github.com/symbioza/bridge/pkg/pricing"
	"github.com/symbioza/bridge/pkg/tokens"
)

// DefaultMaxOutputTokens caps projected output when a stage declares no
// limit of its own. Also the projection fallback when the request carries
// no target_words hint.
const DefaultMaxOutputTokens = 1024

// outputTokensPerWord converts a word target into a token estimate.
const outputTokensPerWord = 1.6

// StagePlan pairs a stage with its messages as assembled before execution.
// For stages after the first, the messages hold an empty slot where the
// previous output will go; the projector accounts for that slot separately.
type StagePlan struct {
	Stage    *Stage
	Messages []llm.Message
}

// Projector produces a pre-flight cost estimate for a whole chain plan and
// enforces the request budget. Projection is a heuristic used only for the
// budget guard, never for billing.
type Projector struct {
	pricing *pricing.Table
}

// NewProjector creates a projector against the given pricing table.
func NewProjector(table *pricing.Table) *Projector {
	return &Projector{pricing: table}
}

// Project computes the projected total cost in USD across the plan.
// Later stages assume the previous output's length equals the projected
// output of the preceding stage.
func (p *Projector) Project(plans []StagePlan, targetWords int) (float64, error) {
	total := 0.0
	prevOutput := 0
	for i, plan := range plans {
		inputTokens := 0
		for _, m := range plan.Messages {
			inputTokens += tokens.Estimate(m.Content)
		}
		if i > 0 {
			inputTokens += prevOutput
		}

		outputTokens := projectedOutputTokens(plan.Stage.Config.MaxOutputTokens, targetWords)

		cost, err := p.pricing.Cost(plan.Stage.Config.Model, inputTokens, outputTokens)
		if err != nil {
			return 0, err
		}
		total += cost
		prevOutput = outputTokens
	}
	return total, nil
}

// Guard returns a BudgetError when the projected cost exceeds capUSD.
// Called once per request, before any stage is invoked.
func (p *Projector) Guard(plans []StagePlan, targetWords int, capUSD float64) error {
	projected, err := p.Project(plans, targetWords)
	if err != nil {
		return err
	}
	if projected > capUSD {
		return &BudgetError{ProjectedUSD: projected, CapUSD: capUSD}
	}
	return nil
}

// projectedOutputTokens is min(stage limit, word-target heuristic). Both
// fall back to DefaultMaxOutputTokens when unset.
func projectedOutputTokens(maxOutput *int, targetWords int) int {
	limit := DefaultMaxOutputTokens
	if maxOutput != nil {
		limit = *maxOutput
	}

	heuristic := DefaultMaxOutputTokens
	if targetWords > 0 {
		heuristic = int(math.Ceil(float64(targetWords) * outputTokensPerWord))
	}

	if heuristic < limit {
		return heuristic
	}
	return limit
}
