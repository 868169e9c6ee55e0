package post

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures this package can produce
type ErrorType string

const (
	ErrorTypeMissingField    ErrorType = "missing_field"
	ErrorTypeAmbiguousSize   ErrorType = "ambiguous_size"
	ErrorTypeUnresolvedTitle ErrorType = "unresolved_title"
	ErrorTypeInvalidOwner    ErrorType = "invalid_owner"
)

// Error represents a parsing or path-resolution failure for a single
// post or file. Failures are local: callers skip the failing entity
// and continue with its siblings.
type Error struct {
	Type    ErrorType
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("post %s error: %s", e.Type, e.Message)
}

// IsType reports whether err is a post error of the given type.
func IsType(err error, t ErrorType) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Type == t
}

func missingFieldError(field string) *Error {
	return &Error{
		Type:    ErrorTypeMissingField,
		Message: fmt.Sprintf("required field %q is missing", field),
	}
}

func ambiguousSizeError(index int) *Error {
	return &Error{
		Type:    ErrorTypeAmbiguousSize,
		Message: fmt.Sprintf("photo %d has neither an original size nor any alternate sizes", index),
	}
}

func unresolvedTitleError(id int64) *Error {
	return &Error{
		Type:    ErrorTypeUnresolvedTitle,
		Message: fmt.Sprintf("photo set %d has no caption or title to name its files", id),
	}
}

func invalidOwnerError(msg string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidOwner,
		Message: msg,
	}
}
