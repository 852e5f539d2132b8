package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Issue is a single finding tied to a 1-based source line.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Suggestions holds the free-text advice returned with a review, one entry per line.
// It decodes from either a JSON string or a JSON array of strings.
type Suggestions []string

func (s *Suggestions) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = nil
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decoding suggestions text: %w", err)
		}
		*s = splitLines(text)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decoding suggestions list: %w", err)
	}
	*s = items
	return nil
}

// String joins the suggestions with newlines.
func (s Suggestions) String() string {
	return strings.Join(s, "\n")
}

func splitLines(text string) Suggestions {
	var out Suggestions
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// AnalysisResult is the outcome of one review of a submitted source file.
// RefactoredScore and RefactoredSource are either both set or both nil.
type AnalysisResult struct {
	ReviewID         string      `json:"reviewId,omitempty"`
	FileName         string      `json:"fileName"`
	OriginalSource   string      `json:"originalSource"`
	OriginalScore    int         `json:"originalScore"`
	RefactoredScore  *int        `json:"refactoredScore,omitempty"`
	Issues           []Issue     `json:"issues"`
	AISuggestions    Suggestions `json:"aiSuggestions,omitempty"`
	RefactoredSource *string     `json:"refactoredSource,omitempty"`
}

// HasRefactoring reports whether the service produced a transformed version.
func (r AnalysisResult) HasRefactoring() bool {
	return r.RefactoredSource != nil && r.RefactoredScore != nil
}

// Normalize enforces the refactoring invariant: a partial refactoring is treated
// as none. A nil issue list becomes empty.
func (r *AnalysisResult) Normalize() {
	if r.RefactoredSource == nil || r.RefactoredScore == nil {
		r.RefactoredSource = nil
		r.RefactoredScore = nil
	}
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
}

// Clone returns a deep copy so callers can hand results across goroutines safely.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	if r.Issues != nil {
		out.Issues = slices.Clone(r.Issues)
	}
	if r.AISuggestions != nil {
		out.AISuggestions = slices.Clone(r.AISuggestions)
	}
	if r.RefactoredScore != nil {
		v := *r.RefactoredScore
		out.RefactoredScore = &v
	}
	if r.RefactoredSource != nil {
		v := *r.RefactoredSource
		out.RefactoredSource = &v
	}
	return out
}
