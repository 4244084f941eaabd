// Package response defines the uniform JSON envelope every handler result
// is wrapped in.
//
// The HTTP status reports transport-level health; the envelope's resultCode
// reports the application-level outcome. A successful envelope is always
// written with 200 OK, even when resultCode is Err.
package response

import (
	"github.com/deppfellow/dca-api/internal/errs"
)

// ResultCode is the application-level outcome of a request, serialized as
// a small integer.
type ResultCode int

const (
	Ok  ResultCode = 0
	Err ResultCode = 1
)

func (rc ResultCode) String() string {
	switch rc {
	case Ok:
		return "ok"
	case Err:
		return "err"
	default:
		return "unknown"
	}
}

// ResponseMessage is a human-readable explanation attached to non-trivial outcomes.
type ResponseMessage struct {
	Text string `json:"text"`
}

// WithText builds a ResponseMessage.
func WithText(text string) *ResponseMessage {
	return &ResponseMessage{Text: text}
}

// CustomResponse is the envelope written for every handler result.
//
// Data and ValidationErrors are not both populated in normal use: the
// success path sets Data, the validation-failure path sets ValidationErrors.
// The zero value is the neutral envelope (Ok, nothing else).
type CustomResponse[T any] struct {
	ResultCode       ResultCode       `json:"resultCode"`
	Data             *T               `json:"data"`
	Message          *ResponseMessage `json:"message"`
	ValidationErrors errs.FieldErrors `json:"validationErrors"`
}

// New assembles an envelope from its parts.
func New[T any](code ResultCode, data *T, message *ResponseMessage, validationErrors errs.FieldErrors) CustomResponse[T] {
	return CustomResponse[T]{
		ResultCode:       code,
		Data:             data,
		Message:          message,
		ValidationErrors: validationErrors,
	}
}

// Default returns the neutral envelope: Ok, no payload, no message, no errors.
func Default[T any]() CustomResponse[T] {
	return CustomResponse[T]{}
}

// Success wraps data in an Ok envelope.
func Success[T any](data T) CustomResponse[T] {
	return New(Ok, &data, nil, nil)
}

// Failure returns an Err envelope explaining the outcome with text.
func Failure[T any](text string) CustomResponse[T] {
	return New[T](Err, nil, WithText(text), nil)
}

// Invalid returns an Err envelope carrying per-field validation errors.
func Invalid[T any](text string, fields errs.FieldErrors) CustomResponse[T] {
	return New[T](Err, nil, WithText(text), fields)
}
