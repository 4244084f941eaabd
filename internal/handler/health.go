package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/dca-api/internal/errs"
	"github.com/deppfellow/dca-api/internal/middleware"
	"github.com/deppfellow/dca-api/internal/response"
	"github.com/deppfellow/dca-api/internal/server"
)

// HealthHandler exposes the status endpoint used by load balancers and
// uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// HealthReport is the data of a successful status envelope.
type HealthReport struct {
	Status      string        `json:"status"`
	Timestamp   time.Time     `json:"timestamp"`
	Environment string        `json:"environment"`
	Database    DatabaseCheck `json:"database"`
}

type DatabaseCheck struct {
	Driver       string `json:"driver"`
	Status       string `json:"status"`
	ResponseTime string `json:"responseTime"`
}

// UnavailableMessage is the envelope text when the datastore cannot be reached.
const UnavailableMessage = "Datastore unavailable"

// CheckHealth pings the datastore within the configured ping timeout.
//
// It answers 200 with a HealthReport, or 503 with an Err envelope.
func (h *HealthHandler) CheckHealth(c echo.Context) (response.CustomResponse[HealthReport], error) {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	timeout := time.Duration(h.server.Config.Database.PingTimeout) * time.Second
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	dbStart := time.Now()
	err := h.server.DB.Ping(ctx)
	responseTime := time.Since(dbStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("response_time", responseTime).
			Msg("database health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]any{
				"check_type":       "database",
				"driver":           string(h.server.DB.Driver()),
				"response_time_ms": responseTime.Milliseconds(),
				"error_message":    err.Error(),
			})
		}

		return response.CustomResponse[HealthReport]{}, errs.NewServiceUnavailableError(UnavailableMessage)
	}

	logger.Debug().
		Dur("response_time", responseTime).
		Msg("database health check passed")

	return response.Success(HealthReport{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Database: DatabaseCheck{
			Driver:       string(h.server.DB.Driver()),
			Status:       "healthy",
			ResponseTime: responseTime.String(),
		},
	}), nil
}
