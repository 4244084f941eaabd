package errs

import "strings"

// FieldErrors maps a field name (as it appears on the wire) to a
// human-readable description of what is wrong with it.
//
// Example:
//
//	{ "email": "must be a valid email address" }
type FieldErrors map[string]string

// Fields returns the field names in no particular order.
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	return fields
}

// HTTPError is the application error carried up to the global error handler.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST", "DOCUMENT_ALREADY_EXISTS").
//   - Message: human-friendly message, safe to show to clients.
//   - Status: HTTP status code the response is written with.
//   - Errors: optional per-field problems.
type HTTPError struct {
	Code    string
	Message string
	Status  int
	Errors  FieldErrors
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It does not compare Code or Status, only the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		Errors:  e.Errors,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
