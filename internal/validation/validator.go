package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/deppfellow/dca-api/internal/errs"
)

// Validatable is implemented by payload types with rules that cannot be
// expressed as struct tags. Validate should return CustomValidationErrors
// (or validator.ValidationErrors) so every violated field is reported.
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// genericField is the key used when a Validatable returns a plain error
// that cannot be attributed to one field.
const genericField = "body"

// Validator runs structural validation and owns the extractor settings.
type Validator struct {
	validate *validator.Validate

	// maxBodyBytes bounds how much of a body Extract will read.
	maxBodyBytes int64

	// exposeValidationErrors makes Reject answer validation failures with an
	// envelope carrying the field map instead of the fixed text body.
	exposeValidationErrors bool
}

// New builds a Validator.
//
// Field names in reported errors follow the `json` tag, so they match what
// the client sent.
func New(maxBodyBytes int64, exposeValidationErrors bool) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// uuid_list: comma-separated list of UUIDs, e.g. "id1,id2".
	_ = validate.RegisterValidation("uuid_list", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		if raw == "" {
			return true
		}
		for _, part := range strings.Split(raw, ",") {
			if _, err := uuid.Parse(strings.TrimSpace(part)); err != nil {
				return false
			}
		}
		return true
	})

	return &Validator{
		validate:               validate,
		maxBodyBytes:           maxBodyBytes,
		exposeValidationErrors: exposeValidationErrors,
	}
}

// MaxBodyBytes reports the request body limit applied by Extract.
func (v *Validator) MaxBodyBytes() int64 {
	return v.maxBodyBytes
}

// Check validates value and returns every violated field, or nil when valid.
//
// Struct tags run first, then Validatable rules. When both report the same
// field the tag message wins.
func (v *Validator) Check(value any) errs.FieldErrors {
	fields := errs.FieldErrors{}

	if err := v.validate.Struct(value); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			// Non-struct payloads (maps, slices, scalars) carry no tag rules.
			mergeValidationError(fields, err)
		}
	}

	if custom, ok := value.(Validatable); ok {
		if err := custom.Validate(); err != nil {
			mergeValidationError(fields, err)
		}
	}

	if len(fields) == 0 {
		return nil
	}

	return fields
}

// mergeValidationError adds the violations carried by err to fields.
func mergeValidationError(fields errs.FieldErrors, err error) {
	add := func(field, msg string) {
		if _, exists := fields[field]; !exists {
			fields[field] = msg
		}
	}

	var validationErrors validator.ValidationErrors
	var customErrors CustomValidationErrors

	switch {
	case errors.As(err, &validationErrors):
		for _, fe := range validationErrors {
			add(fieldKey(fe), messageFor(fe))
		}
	case errors.As(err, &customErrors):
		for _, ce := range customErrors {
			add(ce.Field, ce.Message)
		}
	default:
		add(genericField, err.Error())
	}
}

// fieldKey returns the wire path of a failing field without the root type,
// e.g. "CreateGreeting.address.city" -> "address.city".
func fieldKey(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return fe.Field()
}

// messageFor converts a validator failure into a user-friendly message.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with", "required_without":
		return "is required"

	case "min", "gte":
		// min means minimum length for strings/slices, minimum value for numbers.
		return fmt.Sprintf("must be at least %s%s", fe.Param(), unitFor(fe.Kind()))

	case "max", "lte":
		return fmt.Sprintf("must not exceed %s%s", fe.Param(), unitFor(fe.Kind()))

	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())

	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())

	case "len":
		return fmt.Sprintf("must be exactly %s%s", fe.Param(), unitFor(fe.Kind()))

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "email":
		return "must be a valid email address"

	case "e164":
		return "must be a valid phone number with country code"

	case "url", "uri":
		return "must be a valid URL"

	case "uuid", "uuid4":
		return "must be a valid UUID"

	case "uuid_list":
		return "must be a comma-separated list of valid UUIDs"

	case "alphanum":
		return "must contain only letters and digits"

	case "numeric":
		return "must be numeric"

	case "dive":
		return "some items are invalid"

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// unitFor names what min/max/len count for a kind: characters for strings,
// items for collections, nothing for numbers.
func unitFor(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	default:
		return ""
	}
}
