// Package llm defines the model client contract the chain executor consumes,
// plus the concrete providers the bridge ships with.
package llm

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation sent to a model. Order is
// significant.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is the result of a single model call.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int

	// Metadata carries provider-reported details. The executor requires a
	// "model" key whose value is a key in the pricing table.
	Metadata map[string]string
}

// GenerateOptions carries per-call sampling parameters.
type GenerateOptions struct {
	// MaxOutputTokens limits the response length. nil means provider default.
	MaxOutputTokens *int
	Temperature     float64
	TopP            float64
}

// Client is the single-method contract between the executor and a model
// backend. Implementations must be safe for concurrent use by distinct
// chains. Errors abort the chain immediately; the executor does not retry
// or interpret them beyond transport mapping.
type Client interface {
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (*Response, error)
}
