package extract

import (
	"errors"
	"fmt"
)

// Stages reported by ExtractionError.
const (
	StageRead  = "read"
	StageParse = "parse"
	StageEmpty = "empty"
)

var (
	ErrEmptyInput  = errors.New("document content is empty")
	ErrNoPages     = errors.New("pdf parsing returned no pages")
	ErrEmptyOutput = errors.New("document text extraction produced empty output")
)

// ExtractionError reports which extraction stage failed.
type ExtractionError struct {
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func fail(stage string, err error) error {
	return &ExtractionError{Stage: stage, Err: err}
}
