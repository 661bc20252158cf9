package documents

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("Document not found.")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotAnalyzed    = errors.New("Document has not been analyzed yet.")
	ErrSourceRequired = errors.New("Document upload or URL is required.")
	ErrNotPDF         = errors.New("The document must be a file of type: pdf.")
	ErrTooLarge       = errors.New("Document exceeds the 20MB limit.")
	ErrEmptyDocument  = errors.New("Downloaded document was empty.")
)

// invalid wraps ErrInvalidInput with a user-facing message.
func invalid(msg string) error {
	return &inputError{msg: msg}
}

type inputError struct{ msg string }

func (e *inputError) Error() string        { return e.msg }
func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

// RemoteFetchError reports a document URL that could not be turned into a stored file.
type RemoteFetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *RemoteFetchError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Reason {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// TrackerError wraps a failed tracker call made on behalf of a document.
type TrackerError struct{ Err error }

func (e *TrackerError) Error() string { return "tracker: " + e.Err.Error() }
func (e *TrackerError) Unwrap() error { return e.Err }
