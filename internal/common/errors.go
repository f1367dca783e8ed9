// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input and reference data errors.
	ErrInvalidData         = errors.New("invalid data")
	ErrMissingField        = errors.New("missing required field")
	ErrDegenerateReference = errors.New("degenerate reference statistics")

	// Database errors.
	ErrNotFound = errors.New("not found")

	// Inference errors.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrScoringFailed    = errors.New("scoring failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DataError reports a raw input field or reference statistic that cannot be
// used by the feature pipeline. It always matches ErrInvalidData.
type DataError struct {
	Err    error
	Field  string
	Reason string
}

func (e *DataError) Error() string {
	msg := "invalid data"
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidData) match every DataError.
func (e *DataError) Is(target error) bool {
	return target == ErrInvalidData
}

// NewDataError creates a DataError for the given field.
func NewDataError(field, reason string, err error) error {
	return &DataError{
		Field:  field,
		Reason: reason,
		Err:    err,
	}
}

// DataErrorFields returns the names of every field reported by DataErrors in err,
// including errors combined with errors.Join.
func DataErrorFields(err error) []string {
	var fields []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if de, ok := e.(*DataError); ok && de.Field != "" {
			fields = append(fields, de.Field)
		}
		switch x := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return fields
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
