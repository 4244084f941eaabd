package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/dca-api/internal/handler"
)

// registerSystemRoutes registers operational endpoints that are not part
// of the public API.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", handler.HandleNoBody(h.Health.Handler, h.Health.CheckHealth))
}
