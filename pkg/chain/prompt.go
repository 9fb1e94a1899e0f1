package chain

import (
	"strings"

	"github.com/symbioza/bridge/pkg/config"
	"github.com/symbioza/bridge/pkg/llm"
	"github.com/symbioza/bridge/pkg/store"
)

// Builder assembles the message list for each stage. Stateless; all state
// comes from parameters; no I/O beyond reads already done at chain start.
type Builder struct{}

// NewBuilder creates a prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// PromptInputs carries the per-request state every stage prompt is built
// from. Loaded once at chain start.
type PromptInputs struct {
	// Persona is the persona directive, "" when none.
	Persona string

	// Turns is the trimmed conversation history from the history store.
	Turns []store.Turn

	// RawHistory is the request's free-text context block, used only when
	// Turns is empty.
	RawHistory string

	UserInput   string
	TargetWords int
}

// BuildStageMessages produces the ordered message list for one stage:
//
//  1. persona directive as a system message (when present)
//  2. role-specific instruction as a system message
//  3. conversation history
//  4. current user input
//  5. for stages after the first, the previous stage's output as an
//     assistant message followed by the role's handoff directive
func (b *Builder) BuildStageMessages(stage config.StageConfig, in PromptInputs, prevOutput string, first bool) []llm.Message {
	messages := make([]llm.Message, 0, len(in.Turns)+6)

	if in.Persona != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: in.Persona})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: instructionFor(stage.Role, in.TargetWords),
	})

	messages = append(messages, b.historyMessages(in)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: in.UserInput})

	if !first {
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: prevOutput},
			llm.Message{Role: llm.RoleUser, Content: handoffFor(stage.Role)},
		)
	}
	return messages
}

func (b *Builder) historyMessages(in PromptInputs) []llm.Message {
	if len(in.Turns) > 0 {
		msgs := make([]llm.Message, 0, len(in.Turns))
		for _, turn := range in.Turns {
			role := llm.RoleUser
			if turn.Role == "assistant" {
				role = llm.RoleAssistant
			}
			msgs = append(msgs, llm.Message{Role: role, Content: turn.Text})
		}
		return msgs
	}
	return splitRawHistory(in.RawHistory)
}

// splitRawHistory turns a free-text history block into context messages.
// Blank-line separated blocks alternate user/assistant starting with user;
// a single block becomes one user message.
func splitRawHistory(raw string) []llm.Message {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var msgs []llm.Message
	for _, block := range strings.Split(raw, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		role := llm.RoleUser
		if len(msgs)%2 == 1 {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: block})
	}
	return msgs
}
