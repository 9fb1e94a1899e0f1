package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput indicates a request without user input
	ErrEmptyInput = errors.New("user_input must not be empty")

	// ErrBudgetExceeded indicates the projected chain cost is over the cap
	ErrBudgetExceeded = errors.New("projected cost exceeds budget")

	// ErrNoStages indicates a chain constructed without stages
	ErrNoStages = errors.New("chain requires at least one stage")
)

// BudgetError reports a projection over the configured cap with the
// numbers that triggered the rejection.
type BudgetError struct {
	ProjectedUSD float64
	CapUSD       float64
}

// Error returns formatted error message. The "exceeds budget" substring is
// part of the API contract and asserted by clients.
func (e *BudgetError) Error() string {
	return fmt.Sprintf("projected cost %.6f USD exceeds budget of %.6f USD", e.ProjectedUSD, e.CapUSD)
}

// Unwrap returns the sentinel budget error.
func (e *BudgetError) Unwrap() error {
	return ErrBudgetExceeded
}
