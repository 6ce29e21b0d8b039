package tracker

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrLevelNotFound    = errors.New("level not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrNoteNotFound     = errors.New("learning note not found")
)

// ValidationError reports malformed or incomplete input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err targets an absent entity
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLevelNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrNoteNotFound)
}
