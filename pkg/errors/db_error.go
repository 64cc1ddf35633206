package custom_error

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type UniqueViolationError struct {
	message    string
	constraint string
}

type ForeignKeyViolationError struct {
	message    string
	constraint string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s (constraint: %s)", e.message, e.constraint)
}

func (e *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s (constraint: %s)", e.message, e.constraint)
}

// WrapDBError classifies postgres errors. Anything that is not a *pq.Error is
// wrapped with message and returned as is.
func WrapDBError(message string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w", message, err)
	}

	switch string(pqErr.Code) {
	case codeUniqueViolation:
		return &UniqueViolationError{message: message, constraint: pqErr.Constraint}
	case codeForeignKeyViolation:
		return &ForeignKeyViolationError{
			message:    "value is referenced by or references a missing resource: " + message,
			constraint: pqErr.Constraint,
		}
	default:
		return fmt.Errorf("%s (code %s): %w", message, pqErr.Code, err)
	}
}

func IsUniqueViolation(err error) bool {
	var target *UniqueViolationError
	return errors.As(err, &target)
}

func IsForeignKeyViolation(err error) bool {
	var target *ForeignKeyViolationError
	return errors.As(err, &target)
}

// ValidationError is returned for requests rejected before touching the database.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource state changed concurrently")
)
