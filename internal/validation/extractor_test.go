package validation_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/dca-api/internal/response"
	"github.com/deppfellow/dca-api/internal/validation"
)

type address struct {
	City string `json:"city" validate:"required"`
}

type createGreeting struct {
	Name    string   `json:"name" validate:"required,min=2,max=20"`
	Email   string   `json:"email" validate:"required,email"`
	Age     int      `json:"age" validate:"gte=18,lte=130"`
	Tags    []string `json:"tags" validate:"max=3"`
	Address address  `json:"address"`
}

type window struct {
	From  int `json:"from" validate:"required"`
	Until int `json:"until" validate:"required"`
}

func (w *window) Validate() error {
	if w.Until < w.From {
		return validation.CustomValidationErrors{{Field: "until", Message: "must not be before from"}}
	}
	return nil
}

const validBody = `{"name":"dca","email":"dca@example.com","age":30,"tags":["a","b"],"address":{"city":"Berlin"}}`

// serve registers one POST route that runs the extractor and echoes the
// validated value back in an envelope. handled reports whether the handler
// body ran.
func serve[T any](t *testing.T, v *validation.Validator, body io.Reader) (*httptest.ResponseRecorder, *bytes.Buffer, bool) {
	t.Helper()

	handled := false

	e := echo.New()
	e.POST("/input", func(c echo.Context) error {
		in, err := validation.Extract[T](c, v)
		if err != nil {
			var rej *validation.Rejection
			require.ErrorAs(t, err, &rej)
			return v.Reject(c, rej)
		}

		handled = true
		return response.Success(in.Value()).Respond(c)
	})

	var logBuf bytes.Buffer
	log := zerolog.New(&logBuf)

	req := httptest.NewRequest(http.MethodPost, "/input", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(log.WithContext(req.Context()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec, &logBuf, handled
}

func Test_Extract_ValidInput_YieldsEqualValue(t *testing.T) {
	v := validation.New(1<<20, false)

	rec, _, handled := serve[createGreeting](t, v, strings.NewReader(validBody))

	require.True(t, handled)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"resultCode":0,
		"data":{"name":"dca","email":"dca@example.com","age":30,"tags":["a","b"],"address":{"city":"Berlin"}},
		"message":null,
		"validationErrors":null
	}`, rec.Body.String())
}

func Test_Extract_ValueFieldForField(t *testing.T) {
	v := validation.New(1<<20, false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
	c := e.NewContext(req, httptest.NewRecorder())

	in, err := validation.Extract[createGreeting](c, v)
	require.NoError(t, err)

	assert.Equal(t, createGreeting{
		Name:    "dca",
		Email:   "dca@example.com",
		Age:     30,
		Tags:    []string{"a", "b"},
		Address: address{City: "Berlin"},
	}, in.Value())
}

func Test_Extract_PointerPayload(t *testing.T) {
	v := validation.New(1<<20, false)

	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
	in, err := validation.Extract[*createGreeting](e.NewContext(req, httptest.NewRecorder()), v)
	require.NoError(t, err)
	assert.Equal(t, "dca", in.Value().Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	_, err = validation.Extract[*createGreeting](e.NewContext(req, httptest.NewRecorder()), v)

	var rej *validation.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, validation.ValidationError, rej.Kind)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`null`))
	_, err = validation.Extract[*createGreeting](e.NewContext(req, httptest.NewRecorder()), v)

	require.ErrorAs(t, err, &rej)
	assert.Equal(t, validation.DecodeError, rej.Kind)
}

func Test_Extract_DecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty_body", body: ""},
		{name: "whitespace_body", body: "  \n"},
		{name: "malformed_json", body: `{"name":`},
		{name: "wrong_field_type", body: `{"name":42,"email":"dca@example.com","age":30,"address":{"city":"Berlin"}}`},
		{name: "array_instead_of_object", body: `[1,2,3]`},
		{name: "trailing_data", body: validBody + ` {}`},
	}

	v := validation.New(1<<20, false)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, logBuf, handled := serve[createGreeting](t, v, strings.NewReader(tc.body))

			assert.False(t, handled)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, validation.InvalidInputMessage, rec.Body.String())
			assert.Contains(t, logBuf.String(), `"rejection":"decode_error"`)
		})
	}
}

func Test_Extract_ValidationFailure_LogsEveryField(t *testing.T) {
	v := validation.New(1<<20, false)

	body := `{"name":"x","email":"not-an-email","age":12,"tags":["a","b","c","d"],"address":{}}`
	rec, logBuf, handled := serve[createGreeting](t, v, strings.NewReader(body))

	assert.False(t, handled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, validation.InvalidInputMessage, rec.Body.String())

	logs := logBuf.String()
	assert.Contains(t, logs, `"rejection":"validation_error"`)
	assert.Contains(t, logs, `"name":"must be at least 2 characters"`)
	assert.Contains(t, logs, `"email":"must be a valid email address"`)
	assert.Contains(t, logs, `"age":"must be at least 18"`)
	assert.Contains(t, logs, `"tags":"must not exceed 3 items"`)
	assert.Contains(t, logs, `"address.city":"is required"`)
}

func Test_Extract_ValidationFailure_Exposed(t *testing.T) {
	v := validation.New(1<<20, true)

	rec, _, handled := serve[createGreeting](t, v, strings.NewReader(`{"age":30,"address":{"city":"Berlin"}}`))

	assert.False(t, handled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"resultCode":1,
		"data":null,
		"message":{"text":"Invalid input data!"},
		"validationErrors":{"name":"is required","email":"is required"}
	}`, rec.Body.String())
}

func Test_Extract_Exposed_DecodeErrorStaysPlainText(t *testing.T) {
	v := validation.New(1<<20, true)

	rec, _, _ := serve[createGreeting](t, v, strings.NewReader(`{`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, validation.InvalidInputMessage, rec.Body.String())
}

func Test_Extract_CustomRulesMerge(t *testing.T) {
	v := validation.New(1<<20, true)

	rec, _, handled := serve[window](t, v, strings.NewReader(`{"from":10,"until":5}`))
	assert.False(t, handled)
	assert.JSONEq(t, `{
		"resultCode":1,
		"data":null,
		"message":{"text":"Invalid input data!"},
		"validationErrors":{"until":"must not be before from"}
	}`, rec.Body.String())

	rec, _, handled = serve[window](t, v, strings.NewReader(`{"from":1,"until":5}`))
	assert.True(t, handled)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_Extract_BodyTooLarge(t *testing.T) {
	v := validation.New(16, false)

	rec, logBuf, handled := serve[createGreeting](t, v, strings.NewReader(validBody))

	assert.False(t, handled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, validation.InvalidInputMessage, rec.Body.String())
	assert.Contains(t, logBuf.String(), `"rejection":"body_read_error"`)
}

type abortedReader struct{}

func (abortedReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func Test_Extract_ClientAbort(t *testing.T) {
	v := validation.New(1<<20, false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", abortedReader{})
	_, err := validation.Extract[createGreeting](e.NewContext(req, httptest.NewRecorder()), v)

	var rej *validation.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, validation.BodyReadError, rej.Kind)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func Test_Extract_MapPayloadHasNoTagRules(t *testing.T) {
	v := validation.New(1<<20, false)

	rec, _, handled := serve[map[string]int](t, v, strings.NewReader(`{"a":1}`))

	assert.True(t, handled)
	assert.JSONEq(t, `{"resultCode":0,"data":{"a":1},"message":null,"validationErrors":null}`, rec.Body.String())
}

func Test_Check_UUIDList(t *testing.T) {
	type filter struct {
		IDs string `json:"ids" validate:"uuid_list"`
	}

	v := validation.New(1<<20, false)

	assert.Nil(t, v.Check(&filter{IDs: "6f1c1f4e-3a7b-4a8e-9a52-0d4f9e1c2b3a, 1b4e28ba-2fa1-11d2-883f-0016d3cca427"}))
	assert.Equal(t, "must be a comma-separated list of valid UUIDs", v.Check(&filter{IDs: "abc,def"})["ids"])
}

func Test_RejectionKind_String(t *testing.T) {
	assert.Equal(t, "body_read_error", validation.BodyReadError.String())
	assert.Equal(t, "decode_error", validation.DecodeError.String())
	assert.Equal(t, "validation_error", validation.ValidationError.String())
}

func Test_Extract_MissingKeys(t *testing.T) {
	v := validation.New(1<<20, true)

	// "name" and "email" are tagged required; "tags" and "age" are not
	// required but still have bounds.
	rec, _, handled := serve[createGreeting](t, v, strings.NewReader(`{"age":30,"address":{"city":"Berlin"}}`))

	assert.False(t, handled)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"resultCode":1,"data":null,"message":{"text":"Invalid input data!"},"validationErrors":{"name":"is required","email":"is required"}}`,
		rec.Body.String())

	rec, _, handled = serve[createGreeting](t, v, strings.NewReader(`{"name":"dca","email":"dca@example.com","age":30,"address":{"city":"Berlin"}}`))

	assert.True(t, handled, "an untagged missing key decodes to its zero value")
	assert.Equal(t, http.StatusOK, rec.Code)
}
