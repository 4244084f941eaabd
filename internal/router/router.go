package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/dca-api/internal/handler"
	"github.com/deppfellow/dca-api/internal/middleware"
	"github.com/deppfellow/dca-api/internal/server"
)

// NewRouter builds the Echo instance: error handler, global middleware in
// order, then routes.
//
// Order matters: the request ID must exist before the New Relic
// transaction is enhanced, and the request logger relies on the
// context-scoped logger.
func NewRouter(s *server.Server, h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.CORS(),
		mw.Global.Secure(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
	)

	router.GET("/hello", h.Hello.Hello)

	registerSystemRoutes(router, h)

	return router
}
