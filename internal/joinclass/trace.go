package joinclass

import (
	"context"
	"log/slog"
	"sync"
)

// Tracer receives the intermediate outcomes of classifications. It is
// attached to one Classifier with WithTracer; there is no process-wide
// trace switch.
type Tracer interface {
	// OnStep is called after each rule is evaluated.
	OnStep(s Step)
	// OnDecision is called once per classification with the full record.
	OnDecision(d Decision)
}

// Recorder keeps every decision it sees. Safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	steps     []Step
	decisions []Decision
}

var _ Tracer = (*Recorder)(nil)

func (r *Recorder) OnStep(s Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
}

func (r *Recorder) OnDecision(d Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
}

// Steps returns a copy of the steps recorded so far, in call order.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// Decisions returns a copy of the decisions recorded so far.
func (r *Recorder) Decisions() []Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Decision(nil), r.decisions...)
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
	r.decisions = nil
}

// LogTracer writes steps and decisions to a structured logger at debug
// level.
type LogTracer struct {
	Logger *slog.Logger
}

var _ Tracer = LogTracer{}

func (t LogTracer) OnStep(s Step) {
	t.Logger.LogAttrs(context.Background(), slog.LevelDebug, "join rule",
		slog.String("rule", s.Rule.String()),
		slog.Bool("passed", s.Passed),
		slog.String("detail", s.Detail),
	)
}

func (t LogTracer) OnDecision(d Decision) {
	attrs := []slog.Attr{
		slog.Bool("linear", d.Linear),
		slog.String("left", d.LeftKind),
		slog.String("right", d.RightKind),
	}
	if !d.Linear {
		attrs = append(attrs, slog.String("rule", d.Rule.String()))
	}
	t.Logger.LogAttrs(context.Background(), slog.LevelDebug, "join classified", attrs...)
}

// multiTracer fans out to several tracers in order.
type multiTracer []Tracer

func (m multiTracer) OnStep(s Step) {
	for _, t := range m {
		t.OnStep(s)
	}
}

func (m multiTracer) OnDecision(d Decision) {
	for _, t := range m {
		t.OnDecision(d)
	}
}

// Tee returns a Tracer that forwards to every non-nil tracer given.
func Tee(tracers ...Tracer) Tracer {
	var m multiTracer
	for _, t := range tracers {
		if t != nil {
			m = append(m, t)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}
