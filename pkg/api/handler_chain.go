package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/symbioza/bridge/pkg/chain"
)

// multiChainHandler handles POST /multi_chain.
// Runs the full stage pipeline synchronously and returns the final output
// with per-stage accounting. Budget rejections surface as 402 before any
// model is called.
func (s *Server) multiChainHandler(c *echo.Context) error {
	var req chain.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := s.executor.Run(c.Request().Context(), &req)
	if err != nil {
		return mapChainError(err)
	}

	return c.JSON(http.StatusOK, resp)
}
