package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/dca-api/internal/config"
	"github.com/deppfellow/dca-api/internal/database"
	"github.com/deppfellow/dca-api/internal/errs"
	"github.com/deppfellow/dca-api/internal/response"
	"github.com/deppfellow/dca-api/internal/server"
	"github.com/deppfellow/dca-api/internal/validation"
)

type fakeDatastore struct {
	pingErr error
}

func (f *fakeDatastore) Ping(context.Context) error { return f.pingErr }
func (f *fakeDatastore) Close(context.Context) error { return nil }
func (f *fakeDatastore) Driver() database.Driver { return database.DriverPostgres }

type createGreeting struct {
	Name string `json:"name" validate:"required,min=2"`
}

type greeting struct {
	Text string `json:"text"`
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *server.Server {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	logger := zerolog.Nop()

	return server.NewWithDatastore(cfg, &logger, nil, &fakeDatastore{})
}

func post(h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodPost, "/greetings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h(echo.New().NewContext(req, rec))

	return rec, err
}

func Test_Handle_ValidBody(t *testing.T) {
	h := NewHandler(newTestServer(t, nil))

	handle := Handle(h, func(c echo.Context, in validation.Validated[createGreeting]) (response.CustomResponse[greeting], error) {
		return response.Success(greeting{Text: "Hello " + in.Value().Name}), nil
	})

	rec, err := post(handle, `{"name":"Ada"}`)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"resultCode":0,"data":{"text":"Hello Ada"},"message":null,"validationErrors":null}`, rec.Body.String())
}

func Test_Handle_RejectedBodyNeverReachesHandler(t *testing.T) {
	h := NewHandler(newTestServer(t, nil))
	called := false

	handle := Handle(h, func(c echo.Context, in validation.Validated[createGreeting]) (response.CustomResponse[greeting], error) {
		called = true
		return response.Default[greeting](), nil
	})

	for _, body := range []string{``, `{"name":`, `{"name":"A"}`, `{"name":7}`} {
		rec, err := post(handle, body)
		require.NoError(t, err, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, validation.InvalidInputMessage, rec.Body.String(), body)
	}

	assert.False(t, called)
}

func Test_Handle_ExposedValidationErrors(t *testing.T) {
	h := NewHandler(newTestServer(t, func(cfg *config.Config) {
		cfg.Server.ExposeValidationErrors = true
	}))

	handle := Handle(h, func(c echo.Context, in validation.Validated[createGreeting]) (response.CustomResponse[greeting], error) {
		return response.Default[greeting](), nil
	})

	rec, err := post(handle, `{"name":"A"}`)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"resultCode":1,"data":null,"message":{"text":"Invalid input data!"},"validationErrors":{"name":"must be at least 2 characters"}}`,
		rec.Body.String())
}

func Test_Handle_HandlerErrorIsReturned(t *testing.T) {
	h := NewHandler(newTestServer(t, nil))
	conflict := errs.NewConflictError("A Greeting with this Name already exists", nil)

	handle := Handle(h, func(c echo.Context, in validation.Validated[createGreeting]) (response.CustomResponse[greeting], error) {
		return response.CustomResponse[greeting]{}, conflict
	})

	rec, err := post(handle, `{"name":"Ada"}`)

	assert.Same(t, conflict, err)
	assert.Empty(t, rec.Body.String(), "the global error handler writes the response")
}

func Test_HandleNoBody(t *testing.T) {
	h := NewHandler(newTestServer(t, nil))

	handle := HandleNoBody(h, func(c echo.Context) (response.CustomResponse[greeting], error) {
		return response.Success(greeting{Text: "hi"}), nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, handle(echo.New().NewContext(req, rec)))
	assert.JSONEq(t, `{"resultCode":0,"data":{"text":"hi"},"message":null,"validationErrors":null}`, rec.Body.String())
}

func Test_Hello_UsesConfiguredGreeting(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.Greeting = "Hello from the tests!"
	})

	req := httptest.NewRequest(http.MethodGet, "/hello?ignored=1", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, NewHelloHandler(s).Hello(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello from the tests!", rec.Body.String())
}

func Test_CheckHealth(t *testing.T) {
	s := newTestServer(t, nil)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), httptest.NewRecorder())

	resp, err := NewHealthHandler(s).CheckHealth(c)
	require.NoError(t, err)

	assert.Equal(t, response.Ok, resp.ResultCode)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, "postgres", resp.Data.Database.Driver)
	assert.Equal(t, "development", resp.Data.Environment)
}

func Test_CheckHealth_Unavailable(t *testing.T) {
	s := newTestServer(t, nil)
	s.DB = &fakeDatastore{pingErr: errors.New("dial tcp: connection refused")}
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), httptest.NewRecorder())

	_, err := NewHealthHandler(s).CheckHealth(c)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
	assert.Equal(t, UnavailableMessage, httpErr.Message)
}
