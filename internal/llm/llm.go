// Package llm defines the language-model collaborator used by the analysis
// and ticket pipelines.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Completer sends one system/user prompt pair and returns the model's JSON text.
// Implementations do not retry.
type Completer interface {
	Complete(ctx context.Context, system, user string) (json.RawMessage, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, user string) (json.RawMessage, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, system, user string) (json.RawMessage, error) {
	return f(ctx, system, user)
}

var (
	// ErrNotImplemented is returned by PlaceholderClient.
	ErrNotImplemented = errors.New("LLM not implemented")
	// ErrEmptyResponse is returned when the model answers with no content.
	ErrEmptyResponse = errors.New("model response content was empty")
	// ErrNotObject is returned when the model output is not a JSON object.
	ErrNotObject = errors.New("model returned non-object JSON")
)

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(context.Context, string, string) (json.RawMessage, error) {
	return nil, ErrNotImplemented
}
