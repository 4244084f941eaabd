package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/dca-api/internal/errs"
	"github.com/deppfellow/dca-api/internal/response"
)

// InvalidInputMessage is the fixed body of every rejected request.
const InvalidInputMessage = "Invalid input data!"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	errEmptyBody        = errors.New("request body is empty")
	errNullValue        = errors.New("request body decoded to null")
	errValidationFailed = errors.New("validation failed")
)

// RejectionKind tells which extractor stage refused the request.
type RejectionKind int

const (
	// BodyReadError: the transport could not supply the full body
	// (client disconnect, size limit exceeded).
	BodyReadError RejectionKind = iota + 1
	// DecodeError: the body is not valid JSON for the target type.
	DecodeError
	// ValidationError: the body decoded but broke one or more field rules.
	ValidationError
)

func (k RejectionKind) String() string {
	switch k {
	case BodyReadError:
		return "body_read_error"
	case DecodeError:
		return "decode_error"
	case ValidationError:
		return "validation_error"
	default:
		return "unknown"
	}
}

// Rejection is returned by Extract when a request must not reach its handler.
type Rejection struct {
	Kind RejectionKind

	// Err is the underlying diagnostic (transport, parser or validator).
	Err error

	// Fields lists every violated field; only set for ValidationError.
	Fields errs.FieldErrors
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %v", r.Kind, r.Err)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Validated holds exactly one decoded and validated value.
//
// A handler receiving a Validated[T] only ever runs with a fully decoded,
// structurally valid T.
type Validated[T any] struct {
	value T
}

// Value returns the validated payload.
func (v Validated[T]) Value() T {
	return v.value
}

// Extract reads the request body, decodes it as JSON into T and validates it.
//
// Any failure returns a *Rejection and no partial value; the caller is
// expected to hand it to Reject.
//
// Absent keys decode to their zero value. A field is required only when it
// carries a `validate:"required"` tag, and a missing one is a ValidationError.
func Extract[T any](c echo.Context, v *Validator) (Validated[T], error) {
	body, err := v.readBody(c)
	if err != nil {
		return Validated[T]{}, &Rejection{Kind: BodyReadError, Err: err}
	}

	value, err := decode[T](body)
	if err != nil {
		return Validated[T]{}, &Rejection{Kind: DecodeError, Err: err}
	}

	// The validator dereferences at most one pointer, so pointer payloads are
	// passed as-is and struct payloads by address (which also picks up
	// pointer-receiver Validate methods).
	var target any = &value
	if reflect.TypeFor[T]().Kind() == reflect.Pointer {
		target = value
	}

	if fields := v.Check(target); fields != nil {
		return Validated[T]{}, &Rejection{Kind: ValidationError, Err: errValidationFailed, Fields: fields}
	}

	return Validated[T]{value: value}, nil
}

// readBody reads the complete body, bounded by maxBodyBytes.
func (v *Validator) readBody(c echo.Context) ([]byte, error) {
	req := c.Request()
	if req.Body == nil {
		return nil, errEmptyBody
	}

	reader := http.MaxBytesReader(c.Response(), req.Body, v.maxBodyBytes)
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	return body, nil
}

// decode parses body into a fresh T. Trailing data after the first JSON
// value is an error.
func decode[T any](body []byte) (T, error) {
	var value T

	if len(bytes.TrimSpace(body)) == 0 {
		return value, errEmptyBody
	}

	if err := json.Unmarshal(body, &value); err != nil {
		return value, err
	}

	if rv := reflect.ValueOf(&value).Elem(); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return value, errNullValue
	}

	return value, nil
}

// Reject logs the rejection and writes the response for it.
//
// Every kind answers 400 with the fixed InvalidInputMessage text. When the
// Validator exposes validation errors, ValidationError instead answers 400
// with an Err envelope carrying the field map.
func (v *Validator) Reject(c echo.Context, rej *Rejection) error {
	event := zerolog.Ctx(c.Request().Context()).Warn().
		Str("rejection", rej.Kind.String()).
		Err(rej.Err)

	if len(rej.Fields) > 0 {
		fields := zerolog.Dict()
		for field, msg := range rej.Fields {
			fields = fields.Str(field, msg)
		}
		event = event.Dict("validation_errors", fields)
	}

	event.Msg("request input rejected")

	if v.exposeValidationErrors && rej.Kind == ValidationError {
		return response.Invalid[any](InvalidInputMessage, rej.Fields).
			RespondWithStatus(c, http.StatusBadRequest)
	}

	return c.String(http.StatusBadRequest, InvalidInputMessage)
}
