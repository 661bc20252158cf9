package analysis

import (
	"errors"
	"fmt"
)

// Analysis stages reported by AnalysisError.
const (
	StageInput  = "input"
	StageModel  = "model"
	StageDecode = "decode"
	StageSchema = "schema"
)

// ErrEmptyText is returned before any model call when the document text is blank.
var ErrEmptyText = errors.New("document text is empty")

// SchemaError names the offending path of a report that does not match the schema.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string { return e.Message }

func schemaErr(path, format string, args ...any) error {
	return &SchemaError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// AnalysisError reports which analysis stage failed.
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// StageOf returns the failing stage of an AnalysisError, or "".
func StageOf(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}
