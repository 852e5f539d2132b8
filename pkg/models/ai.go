// Package models contains shared data models used across the codereview codebase.
package models

import (
	"context"
	"errors"
)

// Provider failures. Implementations wrap these so callers can classify errors
// without depending on a concrete provider package.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrProviderDisabled    = errors.New("ai provider disabled")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// AIProvider is the core interface that all AI integrations must implement.
// Never call specific AI providers directly; always inject this interface.
type AIProvider interface {
	// Suggest asks for review advice on a source file given its detected issues.
	Suggest(ctx context.Context, req SuggestRequest) (string, error)
	// Refactor asks for a rewritten version of the source. The reply is free text
	// that is expected to contain a fenced code block.
	Refactor(ctx context.Context, req RefactorRequest) (string, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
	// Model returns the model identifier used for completions.
	Model() string
}

// SuggestRequest is the input to a suggestion operation.
type SuggestRequest struct {
	FileName string
	Issues   []Issue
	// Revisit is set when the source was already refactored once before.
	Revisit bool
}

// RefactorRequest is the input to a refactoring operation.
type RefactorRequest struct {
	FileName    string
	Source      string
	Suggestions []string
	Revisit     bool
}
