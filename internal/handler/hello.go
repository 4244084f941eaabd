package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/dca-api/internal/server"
)

type HelloHandler struct {
	Handler
}

func NewHelloHandler(s *server.Server) *HelloHandler {
	return &HelloHandler{
		Handler: NewHandler(s),
	}
}

// Hello answers the configured greeting as plain text. Query parameters,
// headers and body are ignored.
func (h *HelloHandler) Hello(c echo.Context) error {
	return c.String(http.StatusOK, h.server.Config.Server.Greeting)
}
