package dberr

import (
	"errors"
	"fmt"
)

// Code is the driver-independent category of a datastore error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	DocumentValidation  Code = "document_validation"
	Unavailable         Code = "unavailable"
)

// pgCodes maps PostgreSQL SQLSTATE values to Code.
var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"08000": Unavailable,
	"08003": Unavailable,
	"08006": Unavailable,
	"57P01": Unavailable,
}

// mongoCodes maps MongoDB server error codes to Code.
var mongoCodes = map[int]Code{
	11000: UniqueViolation,
	11001: UniqueViolation,
	121:   DocumentValidation,
	91:    Unavailable,
	189:   Unavailable,
}

// MapPgCode converts a SQLSTATE into a Code.
func MapPgCode(sqlState string) Code {
	if code, ok := pgCodes[sqlState]; ok {
		return code
	}
	return Other
}

// MapMongoCode converts a MongoDB server error code into a Code.
func MapMongoCode(code int) Code {
	if mapped, ok := mongoCodes[code]; ok {
		return mapped
	}
	return Other
}

// Severity is the driver-independent severity of a datastore error.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
)

// MapSeverity converts a PostgreSQL severity string into a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice:
		return Severity(severity)
	default:
		return SeverityError
	}
}

// Error is a normalized datastore error.
//
// Collection is the table (postgres) or collection (mongo) involved;
// Field is the column or document key, when the driver reports one.
type Error struct {
	Code         Code
	Severity     Severity
	DatabaseCode string
	Message      string
	Collection   string
	Field        string
	Constraint   string

	driverErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// ErrCode reports the Code of err, or Other when err is not an *Error.
func ErrCode(err error) Code {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return Other
}
