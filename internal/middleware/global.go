package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/dca-api/internal/dberr"
	"github.com/deppfellow/dca-api/internal/errs"
	"github.com/deppfellow/dca-api/internal/response"
	"github.com/deppfellow/dca-api/internal/server"
	"github.com/deppfellow/dca-api/internal/validation"
)

// RouteNotFoundMessage is the message of the 404 envelope for unknown routes.
const RouteNotFoundMessage = "Route not found"

// GlobalMiddlewares groups middleware applied to every route, plus the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo's CORS middleware configured from server config.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// statusFor derives the status the error handler will answer with.
//
// When a handler returns an error, Echo has not written the status yet by
// the time the request logger runs.
// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
func statusFor(err error, written int) int {
	var rejection *validation.Rejection
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case err == nil:
		return written
	case errors.As(err, &rejection):
		return http.StatusBadRequest
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	default:
		return written
	}
}

// RequestLogger emits one "API" line per request, leveled by status:
// 5xx error, 4xx warn, otherwise info.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := statusFor(v.Error, v.Status)

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns handler panics into errors for GlobalErrorHandler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
	})
}

// Secure adds the standard security headers.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// fromEchoError converts Echo's own errors (unknown route, wrong method,
// ...) into an HTTPError.
func fromEchoError(echoErr *echo.HTTPError) *errs.HTTPError {
	if echoErr.Code == http.StatusNotFound {
		return errs.NewNotFoundError(RouteNotFoundMessage, nil)
	}

	message, ok := echoErr.Message.(string)
	if !ok {
		message = http.StatusText(echoErr.Code)
	}

	return &errs.HTTPError{
		Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
		Message: message,
		Status:  echoErr.Code,
	}
}

// toHTTPError resolves err into the HTTPError sent to the client.
//
// Errors that are neither HTTPErrors nor Echo errors go through classify;
// when classify yields no HTTPError either, the answer is a plain 500.
func toHTTPError(err error, classify func(error) error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return fromEchoError(echoErr)
	}

	if !errors.As(classify(err), &httpErr) {
		httpErr = errs.NewInternalServerError()
	}

	return httpErr
}

// GlobalErrorHandler is the final funnel for every error a handler or
// middleware returns.
//
//   - *validation.Rejection: answered by the Validator (fixed 400 text)
//   - *errs.HTTPError: Err envelope with its status
//   - *echo.HTTPError: Err envelope; unknown routes read "Route not found"
//   - anything else: classified by dberr.HandleError
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	logger := GetLogger(c)

	if c.Response().Committed {
		logger.Error().Err(err).Msg("error after response was committed")
		return
	}

	var rejection *validation.Rejection
	if errors.As(err, &rejection) {
		if rejectErr := global.server.Validator.Reject(c, rejection); rejectErr != nil {
			logger.Error().Err(rejectErr).Msg("failed to write rejection")
		}
		return
	}

	// Keep the original error for the log; the client only sees the
	// sanitized HTTPError.
	originalErr := err

	httpErr := toHTTPError(err, dberr.HandleError)

	event := logger.Warn()
	if httpErr.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}

	event.
		Err(originalErr).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	resp := response.Failure[any](httpErr.Message)
	if len(httpErr.Errors) > 0 {
		resp = response.Invalid[any](httpErr.Message, httpErr.Errors)
	}

	if writeErr := resp.RespondWithStatus(c, httpErr.Status); writeErr != nil {
		logger.Error().Err(writeErr).Msg("failed to write error response")
	}
}
