package chain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbioza/bridge/pkg/config"
	"github.com/symbioza/bridge/pkg/llm"
	"github.com/symbioza/bridge/pkg/pricing"
)

func intPtr(n int) *int { return &n }

func planFor(role config.StageRole, model string, maxOutput *int, contents ...string) StagePlan {
	msgs := make([]llm.Message, 0, len(contents))
	for _, c := range contents {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: c})
	}
	return StagePlan{
		Stage: &Stage{Config: config.StageConfig{
			Role: role, Model: model, MaxOutputTokens: maxOutput,
		}},
		Messages: msgs,
	}
}

func TestProjectedOutputTokens(t *testing.T) {
	tests := []struct {
		name        string
		maxOutput   *int
		targetWords int
		want        int
	}{
		{"no limit, no target", nil, 0, 1024},
		{"target drives heuristic", nil, 100, 160},
		{"stage limit below heuristic", intPtr(120), 100, 120},
		{"heuristic below stage limit", intPtr(4096), 100, 160},
		{"target rounds up", nil, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, projectedOutputTokens(tt.maxOutput, tt.targetWords))
		})
	}
}

func TestProject_SingleStage(t *testing.T) {
	p := NewProjector(pricing.NewTable(nil))

	// 400 chars of input = 100 tokens; output projected at 1024.
	plan := planFor(config.RoleAnalyzer, "llama-3.1-8b", nil, strings.Repeat("x", 400))
	got, err := p.Project([]StagePlan{plan}, 0)

	require.NoError(t, err)
	want := (100*0.05 + 1024*0.08) / 1_000_000
	assert.InDelta(t, want, got, 1e-12)
}

func TestProject_LaterStagesIncludePreviousOutput(t *testing.T) {
	p := NewProjector(pricing.NewTable(nil))

	plans := []StagePlan{
		planFor(config.RoleAnalyzer, "llama-3.1-8b", intPtr(200), strings.Repeat("x", 400)),
		planFor(config.RoleImitator, "llama-3.1-8b", intPtr(200), strings.Repeat("x", 400)),
	}
	got, err := p.Project(plans, 0)

	require.NoError(t, err)
	// Second stage input carries the first stage's projected 200 output tokens.
	want := (100*0.05+200*0.08)/1_000_000 + ((100+200)*0.05+200*0.08)/1_000_000
	assert.InDelta(t, want, got, 1e-12)
}

func TestProject_UnpricedModel(t *testing.T) {
	p := NewProjector(pricing.NewTable(nil))

	plan := planFor(config.RoleAnalyzer, "no-such-model", nil, "hi")
	_, err := p.Project([]StagePlan{plan}, 0)

	assert.ErrorIs(t, err, pricing.ErrModelNotPriced)
}

func TestGuard(t *testing.T) {
	p := NewProjector(pricing.NewTable(nil))
	plan := planFor(config.RoleAnalyzer, "gpt-4o", nil, strings.Repeat("x", 4000))

	t.Run("within budget", func(t *testing.T) {
		assert.NoError(t, p.Guard([]StagePlan{plan}, 0, 1.0))
	})

	t.Run("over budget", func(t *testing.T) {
		err := p.Guard([]StagePlan{plan}, 0, 0.000001)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBudgetExceeded)
		assert.Contains(t, err.Error(), "exceeds budget")

		var budgetErr *BudgetError
		require.True(t, errors.As(err, &budgetErr))
		assert.Equal(t, 0.000001, budgetErr.CapUSD)
		assert.Greater(t, budgetErr.ProjectedUSD, budgetErr.CapUSD)
	})

	t.Run("projection exactly at cap passes", func(t *testing.T) {
		projected, err := p.Project([]StagePlan{plan}, 0)
		require.NoError(t, err)
		assert.NoError(t, p.Guard([]StagePlan{plan}, 0, projected))
	})
}
