package response

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// SerializationFailedMessage is the plain-text body written when an envelope
// cannot be encoded.
const SerializationFailedMessage = "Custom response serialization failed!"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SerializationError reports that an envelope could not be encoded to JSON.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serializing response envelope: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Encode serializes the envelope. Fields keep their declared order.
func (r CustomResponse[T]) Encode() ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return body, nil
}

// Respond writes the envelope with 200 OK.
func (r CustomResponse[T]) Respond(c echo.Context) error {
	return r.RespondWithStatus(c, http.StatusOK)
}

// RespondWithStatus writes the envelope with the given status.
//
// If the envelope cannot be encoded, a fixed plain-text 500 is written
// instead; the error is logged and never re-serialized.
func (r CustomResponse[T]) RespondWithStatus(c echo.Context, status int) error {
	body, err := r.Encode()
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().
			Err(err).
			Str("result_code", r.ResultCode.String()).
			Msg("response serialization failed")

		return c.String(http.StatusInternalServerError, SerializationFailedMessage)
	}

	return c.Blob(status, echo.MIMEApplicationJSON, body)
}
