package session

import "errors"

// ErrNoInputSelected is returned by RunAnalysis when no artifact is selected.
var ErrNoInputSelected = errors.New("no input selected: select a source file first")

// RequestError describes a failed analysis request. Reason is suitable for display.
type RequestError struct {
	Reason string
	Err    error
}

func (e *RequestError) Error() string { return "analysis request failed: " + e.Reason }

func (e *RequestError) Unwrap() error { return e.Err }
