package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/symbioza/bridge/pkg/version"
)

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// healthHandler handles GET /healthz.
// The pipeline has no internal dependencies to probe: model providers are
// external and deliberately excluded so an upstream outage never makes an
// orchestrator restart the bridge.
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &HealthResponse{
		Status:  "healthy",
		Version: version.GitCommit,
	})
}
