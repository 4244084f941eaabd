package dberr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/dca-api/internal/errs"
)

// ConvertPgError converts a raw PostgreSQL error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:         MapPgCode(src.Code),
		Severity:     MapSeverity(src.Severity),
		DatabaseCode: src.Code,
		Message:      src.Message,
		Collection:   src.TableName,
		Field:        src.ColumnName,
		Constraint:   src.ConstraintName,
		driverErr:    src,
	}
}

// duplicateKeyPattern pulls the collection and index out of a MongoDB
// E11000 message, e.g.
//
//	E11000 duplicate key error collection: dca.documents index: slug_1 dup key: { slug: "a" }
var duplicateKeyPattern = regexp.MustCompile(`collection: [^.\s]+\.(\S+) index: (\S+)`)

// ConvertMongoError converts a MongoDB server error into an *Error.
//
// It returns nil when err carries no server error code, which leaves
// client-side failures (timeouts, network) to the caller.
func ConvertMongoError(err error) *Error {
	var (
		code    int
		message string
	)

	var writeErr mongo.WriteException
	var cmdErr mongo.CommandError

	switch {
	case errors.As(err, &writeErr) && len(writeErr.WriteErrors) > 0:
		code = writeErr.WriteErrors[0].Code
		message = writeErr.WriteErrors[0].Message
	case errors.As(err, &cmdErr):
		code = int(cmdErr.Code)
		message = cmdErr.Message
	default:
		return nil
	}

	if code == 0 {
		return nil
	}

	dbErr := &Error{
		Code:         MapMongoCode(code),
		Severity:     SeverityError,
		DatabaseCode: strconv.Itoa(code),
		Message:      message,
		driverErr:    err,
	}

	if matches := duplicateKeyPattern.FindStringSubmatch(message); len(matches) == 3 {
		dbErr.Collection = matches[1]
		dbErr.Constraint = matches[2]
		dbErr.Field = fieldFromIndex(matches[2])
	}

	return dbErr
}

// fieldFromIndex derives a key name from a default MongoDB index name
// ("email_1" -> "email"). Compound indexes yield "".
func fieldFromIndex(index string) string {
	parts := strings.Split(index, "_")
	if len(parts) != 2 {
		return ""
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return ""
	}
	return parts[0]
}

// generateErrorCode builds a machine-friendly code such as DOCUMENT_ALREADY_EXISTS.
func generateErrorCode(collection string, code Code) string {
	if collection == "" {
		collection = "RECORD"
	}

	domain := strings.ToUpper(collection)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch code {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, DocumentValidation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces the client-facing message for dbErr.
func formatUserFriendlyMessage(dbErr *Error) string {
	entityName := getEntityName(dbErr.Collection, dbErr.Field)

	switch dbErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		field := dbErr.Field
		if field == "" {
			field = extractColumnForUniqueViolation(dbErr.Constraint)
		}
		if field == "" {
			return fmt.Sprintf("A %s with this identifier already exists", entityName)
		}
		return fmt.Sprintf("A %s with this %s already exists", entityName, humanizeText(field))

	case NotNullViolation:
		fieldName := humanizeText(dbErr.Field)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation, DocumentValidation:
		if fieldName := humanizeText(dbErr.Field); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName infers what a record is called.
//
// A foreign key column such as "user_id" wins over the collection name;
// collection names are naively singularized.
func getEntityName(collection, field string) string {
	if field != "" && strings.HasSuffix(strings.ToLower(field), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(field), "_id"))
	}

	if collection != "" {
		entity := collection
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns snake_case into Title Case ("first_name" -> "First Name").
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers a column from a constraint name.
//
// Supported conventions: unique_<table>_<column> and <table>_<column>_key.
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueKeyPattern.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// fromDatabaseError maps a normalized error onto an HTTPError.
func fromDatabaseError(dbErr *Error) error {
	errorCode := generateErrorCode(dbErr.Collection, dbErr.Code)
	userMessage := formatUserFriendlyMessage(dbErr)

	switch dbErr.Code {
	case UniqueViolation:
		return errs.NewConflictError(userMessage, &errorCode)

	case NotNullViolation:
		field := strings.ToLower(dbErr.Field)
		if field == "" {
			return errs.NewBadRequestError(userMessage, &errorCode, nil)
		}
		return errs.NewBadRequestError(userMessage, &errorCode, errs.FieldErrors{field: "is required"})

	case ForeignKeyViolation, CheckViolation, DocumentValidation:
		return errs.NewBadRequestError(userMessage, &errorCode, nil)

	case Unavailable:
		return errs.NewServiceUnavailableError("Datastore unavailable")

	default:
		return errs.NewInternalServerError()
	}
}

// HandleError converts a low-level datastore error into an *errs.HTTPError.
//
//   - *errs.HTTPError: returned unchanged
//   - PostgreSQL / MongoDB server errors: mapped by category
//   - no rows / no documents: 404
//   - timeouts and network failures: 503
//   - anything else: 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromDatabaseError(ConvertPgError(pgErr))
	}

	if dbErr := ConvertMongoError(err); dbErr != nil {
		return fromDatabaseError(dbErr)
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, mongo.ErrNoDocuments):
		return errs.NewNotFoundError("Resource not found", nil)

	case errors.Is(err, context.DeadlineExceeded),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err),
		pgconn.Timeout(err):
		return errs.NewServiceUnavailableError("Datastore unavailable")
	}

	return errs.NewInternalServerError()
}
