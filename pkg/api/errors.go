package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/symbioza/bridge/pkg/chain"
)

// mapChainError maps executor errors to HTTP error responses.
func mapChainError(err error) *echo.HTTPError {
	if errors.Is(err, chain.ErrEmptyInput) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, chain.ErrBudgetExceeded) {
		// The body keeps the projected and cap figures so callers can
		// tune their request instead of retrying blind.
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	}

	// Unexpected error
	slog.Error("Unexpected chain error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
