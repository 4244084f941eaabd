package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/dca-api/internal/middleware"
	"github.com/deppfellow/dca-api/internal/response"
	"github.com/deppfellow/dca-api/internal/server"
	"github.com/deppfellow/dca-api/internal/validation"
)

// Handler holds the shared application dependencies of every concrete handler.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint receiving an already decoded and
// validated request body.
type HandlerFunc[Req, Res any] func(c echo.Context, in validation.Validated[Req]) (response.CustomResponse[Res], error)

// HandlerFuncNoBody is a typed endpoint for routes without a request body.
type HandlerFuncNoBody[Res any] func(c echo.Context) (response.CustomResponse[Res], error)

// pipeline carries the per-request observability state shared by both
// handler shapes.
type pipeline struct {
	start  time.Time
	txn    *newrelic.Transaction
	logger zerolog.Logger
}

func newPipeline(c echo.Context, operation string) *pipeline {
	p := &pipeline{
		start: time.Now(),
		txn:   newrelic.FromContext(c.Request().Context()),
	}

	if p.txn != nil {
		p.txn.AddAttribute("handler.name", c.Path())
	}

	p.logger = middleware.GetLogger(c).With().
		Str("operation", operation).
		Str("route", c.Path()).
		Logger()

	p.logger.Debug().Msg("handling request")

	return p
}

// run executes the endpoint and writes its envelope with status 200.
func run[Res any](c echo.Context, p *pipeline, fn func() (response.CustomResponse[Res], error)) error {
	handlerStart := time.Now()
	resp, err := fn()
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		p.logger.Debug().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(p.start)).
			Msg("handler execution failed")

		if p.txn != nil {
			p.txn.AddAttribute("handler.status", "error")
			p.txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}

		// The global error handler logs and answers.
		return err
	}

	if p.txn != nil {
		p.txn.AddAttribute("handler.status", "success")
		p.txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		p.txn.AddAttribute("total.duration_ms", time.Since(p.start).Milliseconds())
	}

	p.logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(p.start)).
		Msg("request completed successfully")

	return resp.Respond(c)
}

// Handle wraps a typed endpoint with the validating extractor and the
// response envelope.
//
// A rejected body never reaches fn; the Validator answers it directly.
//
//	e.POST("/greetings", handler.Handle(h, createGreeting))
func Handle[Req, Res any](h Handler, fn HandlerFunc[Req, Res]) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := newPipeline(c, "handler")

		extractStart := time.Now()
		in, err := validation.Extract[Req](c, h.server.Validator)
		extractDuration := time.Since(extractStart)

		if err != nil {
			if p.txn != nil {
				p.txn.AddAttribute("validation.status", "failed")
				p.txn.AddAttribute("validation.duration_ms", extractDuration.Milliseconds())
			}

			var rejection *validation.Rejection
			if errors.As(err, &rejection) {
				return h.server.Validator.Reject(c, rejection)
			}

			if p.txn != nil {
				p.txn.NoticeError(nrpkgerrors.Wrap(err))
			}
			return err
		}

		if p.txn != nil {
			p.txn.AddAttribute("validation.status", "success")
			p.txn.AddAttribute("validation.duration_ms", extractDuration.Milliseconds())
		}

		return run(c, p, func() (response.CustomResponse[Res], error) {
			return fn(c, in)
		})
	}
}

// HandleNoBody wraps a typed endpoint that reads no request body.
func HandleNoBody[Res any](h Handler, fn HandlerFuncNoBody[Res]) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := newPipeline(c, "handler_no_body")

		return run(c, p, func() (response.CustomResponse[Res], error) {
			return fn(c)
		})
	}
}
