package session

import "github.com/kiranshivaraju/codereview/pkg/models"

// Phase identifies which variant of State holds.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseBusy
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBusy:
		return "busy"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the orchestration state. Result is set only in PhaseSucceeded and
// Reason only in PhaseFailed. Values are immutable once published.
type State struct {
	Phase  Phase
	Result *models.AnalysisResult
	Reason string
}

func Idle() State { return State{Phase: PhaseIdle} }

func Busy() State { return State{Phase: PhaseBusy} }

// Succeeded wraps a private copy of result.
func Succeeded(result models.AnalysisResult) State {
	r := result.Clone()
	r.Normalize()
	return State{Phase: PhaseSucceeded, Result: &r}
}

func Failed(reason string) State { return State{Phase: PhaseFailed, Reason: reason} }

// Succeeded returns the result when the state is PhaseSucceeded.
func (s State) Succeeded() (models.AnalysisResult, bool) {
	if s.Phase != PhaseSucceeded || s.Result == nil {
		return models.AnalysisResult{}, false
	}
	return *s.Result, true
}

func (s State) IsBusy() bool { return s.Phase == PhaseBusy }

// StateSource is anything that can report the current orchestration state.
type StateSource interface {
	State() State
}

// Static is a StateSource that always reports the same state. It lets a
// stored review be exported without running an analysis.
type Static State

func (s Static) State() State { return State(s) }
