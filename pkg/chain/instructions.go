package chain

import (
	"fmt"

	"github.com/symbioza/bridge/pkg/config"
)

// Stage instructions are static per role. Every stage receives its role's
// instruction as a system message, after the optional persona directive.
const (
	analyzerInstructions = "You are the analyzer stage of a reply pipeline. " +
		"Extract the tone, the sender's persona, and the conversational context " +
		"from the exchange below as concise bullet points. Do not draft a reply."

	imitatorInstructions = "You are the imitator stage of a reply pipeline. " +
		"Draft a reply in the persona's voice, grounded in the analyzer's bullets " +
		"and the conversation so far."

	postEditorInstructions = "You are the post-editor stage of a reply pipeline. " +
		"Polish the draft's cadence and flow. Preserve its meaning and length."

	maskerInstructions = "You are the masker stage of a reply pipeline. " +
		"Soften phrasing that reads as machine-generated while keeping the " +
		"established voice intact."
)

// Handoff directives are sent as a fresh user message after the previous
// stage's output on every stage except the first.
const (
	analyzerHandoff   = "Analyze the draft above and report tone, persona, and context bullets."
	imitatorHandoff   = "Write the reply now, building on the analysis above."
	postEditorHandoff = "Polish the draft above. Keep what it says; improve how it reads."
	maskerHandoff     = "Rewrite the draft above so it reads naturally human. Change as little as possible."
)

// instructionFor returns the system instruction for a role. The imitator
// gets the word target appended when the request provides one.
func instructionFor(role config.StageRole, targetWords int) string {
	switch role {
	case config.RoleAnalyzer:
		return analyzerInstructions
	case config.RoleImitator:
		if targetWords > 0 {
			return fmt.Sprintf("%s Target roughly %d words.", imitatorInstructions, targetWords)
		}
		return imitatorInstructions
	case config.RolePostEditor:
		return postEditorInstructions
	case config.RoleMasker:
		return maskerInstructions
	}
	return ""
}

func handoffFor(role config.StageRole) string {
	switch role {
	case config.RoleAnalyzer:
		return analyzerHandoff
	case config.RoleImitator:
		return imitatorHandoff
	case config.RolePostEditor:
		return postEditorHandoff
	case config.RoleMasker:
		return maskerHandoff
	}
	return ""
}
