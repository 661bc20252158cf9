package tickets

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidType        = errors.New("Ticket type must be task or spike.")
	ErrEmailRequired      = errors.New("Email payload is required.")
	ErrSubjectRequired    = errors.New("Email subject is required.")
	ErrBodyRequired       = errors.New("Email body is required.")
	ErrSummaryRequired    = errors.New("Summary is required.")
	ErrDescriptionMissing = errors.New("Description is required.")
)

// CompositionError reports a model-written draft that could not be accepted.
type CompositionError struct {
	Reason string
	Err    error
}

func (e *CompositionError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

func compositionErr(format string, args ...any) error {
	return &CompositionError{Reason: fmt.Sprintf(format, args...)}
}
