package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Constructors_StatusAndCode(t *testing.T) {
	custom := "DOCUMENT_ALREADY_EXISTS"

	tests := []struct {
		name   string
		err    *HTTPError
		status int
		code   string
	}{
		{name: "bad_request", err: NewBadRequestError("bad", nil, nil), status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "bad_request_custom_code", err: NewBadRequestError("bad", &custom, nil), status: http.StatusBadRequest, code: custom},
		{name: "not_found", err: NewNotFoundError("missing", nil), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "conflict", err: NewConflictError("dup", &custom), status: http.StatusConflict, code: custom},
		{name: "unavailable", err: NewServiceUnavailableError("down"), status: http.StatusServiceUnavailable, code: "SERVICE_UNAVAILABLE"},
		{name: "internal", err: NewInternalServerError(), status: http.StatusInternalServerError, code: "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.Status)
			assert.Equal(t, tc.code, tc.err.Code)
		})
	}
}

func Test_HTTPError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("loading document: %w", NewNotFoundError("document not found", nil))

	var httpErr *HTTPError
	assert.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, "document not found", httpErr.Error())
	assert.True(t, errors.Is(wrapped, &HTTPError{}))
}

func Test_HTTPError_WithMessage_DoesNotMutate(t *testing.T) {
	base := NewBadRequestError("original", nil, FieldErrors{"name": "is required"})
	copied := base.WithMessage("changed")

	assert.Equal(t, "original", base.Message)
	assert.Equal(t, "changed", copied.Message)
	assert.Equal(t, base.Errors, copied.Errors)
	assert.Equal(t, base.Status, copied.Status)
}

func Test_FieldErrors_Fields(t *testing.T) {
	fields := FieldErrors{"name": "is required", "age": "must be at least 18"}

	assert.ElementsMatch(t, []string{"name", "age"}, fields.Fields())
}
