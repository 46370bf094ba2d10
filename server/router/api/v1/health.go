package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/topicinsights/topicinsights/internal/version"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// GetHealth reports service liveness. Dependency failures degrade the
// status instead of surfacing as errors.
// GET /api/v1/health
func (s *APIV1Service) GetHealth(c echo.Context) error {
	services := map[string]string{}

	status := "healthy"
	if s.Store.HealthCheck(c.Request().Context()) {
		services["database"] = "healthy"
	} else {
		services["database"] = "unhealthy"
		status = "degraded"
	}

	if s.Agent != nil && s.Embedder != nil {
		services["llm"] = "configured"
	} else {
		services["llm"] = "not_configured"
	}

	return c.JSON(http.StatusOK, &healthResponse{
		Status:   status,
		Version:  version.GetCurrentVersion(s.Profile.Mode),
		Services: services,
	})
}
