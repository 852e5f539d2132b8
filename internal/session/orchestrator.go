package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kiranshivaraju/codereview/pkg/models"
)

// ErrSuperseded is reported by Pending.Wait when a newer analysis was issued
// before this one settled, so its outcome was discarded.
var ErrSuperseded = errors.New("analysis superseded by a newer request")

// Analyzer submits one artifact to the remote analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, fileName string, content []byte) (models.AnalysisResult, error)
}

// Orchestrator owns the orchestration state and allows at most one live
// analysis request. Every transition happens under mu, so observers see
// them in a total order.
type Orchestrator struct {
	selection *Holder
	analyzer  Analyzer
	observers []func(State)

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers fn to be called after every state transition.
// fn runs while the orchestrator lock is held and must not call back into it.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, fn)
	}
}

// NewOrchestrator creates an Orchestrator in the Idle state.
func NewOrchestrator(selection *Holder, analyzer Analyzer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		selection: selection,
		analyzer:  analyzer,
		state:     Idle(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current orchestration state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RunAnalysis submits the current selection. Without a selection it returns
// ErrNoInputSelected and leaves the state untouched. Otherwise the state is
// Busy by the time RunAnalysis returns, and any earlier in-flight request is
// superseded: its context is cancelled and its settle will be discarded.
func (o *Orchestrator) RunAnalysis(ctx context.Context) (*Pending, error) {
	artifact, ok := o.selection.Current()
	if !ok {
		return nil, ErrNoInputSelected
	}

	reqCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	p := &Pending{gen: o.gen, done: make(chan struct{})}
	o.cancel = cancel
	o.setLocked(Busy())
	o.mu.Unlock()

	slog.Debug("analysis issued", "file_name", artifact.Name, "generation", p.gen)

	go o.settle(reqCtx, cancel, artifact, p)
	return p, nil
}

func (o *Orchestrator) settle(ctx context.Context, cancel context.CancelFunc, artifact Artifact, p *Pending) {
	defer close(p.done)
	defer cancel()

	result, err := o.call(ctx, artifact)

	var next State
	if err != nil {
		reqErr := &RequestError{Reason: err.Error(), Err: err}
		next = Failed(reqErr.Reason)
		p.err = reqErr
	} else {
		next = Succeeded(result)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if p.gen != o.gen {
		slog.Debug("discarding stale analysis settle", "generation", p.gen, "current", o.gen)
		p.err = ErrSuperseded
		return
	}

	o.cancel = nil
	o.setLocked(next)
	p.applied = true
	if next.Phase == PhaseFailed {
		slog.Warn("analysis failed", "file_name", artifact.Name, "reason", next.Reason)
	}
}

// call invokes the analyzer, converting a panic into an error.
func (o *Orchestrator) call(ctx context.Context, artifact Artifact) (result models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in analyzer", "error", r, "file_name", artifact.Name)
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()
	return o.analyzer.Analyze(ctx, artifact.Name, artifact.Content)
}

func (o *Orchestrator) setLocked(s State) {
	o.state = s
	for _, fn := range o.observers {
		fn(s)
	}
}

// Pending tracks one issued analysis request.
type Pending struct {
	gen  uint64
	done chan struct{}

	// written before done is closed
	applied bool
	err     error
}

// Done is closed once the request has settled.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Applied reports whether this request's settle updated the state.
// Only meaningful after Done is closed.
func (p *Pending) Applied() bool {
	select {
	case <-p.done:
		return p.applied
	default:
		return false
	}
}

// Wait blocks until the request settles. It returns nil when the request
// succeeded and was applied, a *RequestError when it failed, ErrSuperseded
// when a newer request made it stale, or ctx.Err().
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
