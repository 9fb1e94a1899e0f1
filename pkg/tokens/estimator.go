// Package tokens provides a deterministic token count approximation.
// It backs history trimming and pre-flight cost projection only; actual
// billing always uses the token counts reported by the provider.
package tokens

// Estimate approximates the token count of text at roughly four characters
// per token, rounded up. Non-empty text estimates to at least 1; empty text
// estimates to 0. Monotone in text length.
func Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
