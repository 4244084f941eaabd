package handler

import (
	"github.com/deppfellow/dca-api/internal/server"
)

// Handlers groups every HTTP handler so router setup receives one value.
type Handlers struct {
	Hello  *HelloHandler
	Health *HealthHandler
}

func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Hello:  NewHelloHandler(s),
		Health: NewHealthHandler(s),
	}
}
