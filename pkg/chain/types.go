// Package chain implements the bridge's multi-stage reply pipeline: prompt
// assembly, pre-flight cost projection, sequential stage execution, and the
// accounting that follows a completed request.
package chain

import (
	"github.com/symbioza/bridge/pkg/config"
	"github.com/symbioza/bridge/pkg/llm"
)

// Stage pairs a stage configuration with the client that executes it.
// Stages are created at chain construction and immutable for the chain's
// lifetime.
type Stage struct {
	Config config.StageConfig
	Client llm.Client
}

// Request is the body of POST /multi_chain.
type Request struct {
	// History is a free-text context block, used only when ConversationID
	// is absent. When both are present, ConversationID wins.
	History string `json:"history,omitempty"`

	// UserInput is the message to reply to (required, non-empty).
	UserInput string `json:"user_input"`

	// Settings is an open mapping; target_words is recognized by the
	// projector and the imitator instructions.
	Settings map[string]any `json:"settings,omitempty"`

	PersonaID      string `json:"persona_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// TargetWords extracts the recognized target_words setting, 0 when absent
// or not a number.
func (r *Request) TargetWords() int {
	v, exists := r.Settings["target_words"]
	if !exists {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// CallRecord describes one executed stage for accounting.
type CallRecord struct {
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyS     float64 `json:"latency_s"`
}

// Response is the aggregated result of a completed chain.
type Response struct {
	// Output is the final stage's text.
	Output string `json:"output"`

	// LatencyS is the wall-clock duration of the whole stage loop.
	LatencyS float64 `json:"latency_s"`

	// CostUSD is the sum of per-stage costs.
	CostUSD float64 `json:"cost_usd"`

	// Calls is keyed by stage role.
	Calls map[string]CallRecord `json:"calls"`
}

// CostLogRecord is one line of the append-only cost log.
type CostLogRecord struct {
	Timestamp      string                `json:"timestamp"`
	RequestID      string                `json:"request_id"`
	ConversationID *string               `json:"conversation_id"`
	TotalCostUSD   float64               `json:"total_cost_usd"`
	TotalLatencyS  float64               `json:"total_latency_s"`
	Calls          map[string]CallRecord `json:"calls"`
}
