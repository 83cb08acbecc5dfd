package rewrite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/joinclass"
	"github.com/roach88/linjoin/internal/varscope"
)

// JoinDecision records the classification of one join site.
type JoinDecision struct {
	Left     string             `json:"left"`
	Right    string             `json:"right"`
	Decision joinclass.Decision `json:"decision"`
}

// Result is the outcome of one rewrite pass.
type Result struct {
	PassID string `json:"pass_id"`
	// Plan is the rewritten tree.
	Plan algebra.Node `json:"-"`
	// Joins lists every classified join site in post-order.
	Joins      []JoinDecision `json:"joins"`
	Linearized int            `json:"linearized"`
}

// Rewriter runs join-linearization passes. Safe for concurrent use.
type Rewriter struct {
	analyzer varscope.Analyzer
	ids      PassIDGenerator
	metrics  *Metrics
	logger   *slog.Logger
	tracer   joinclass.Tracer
	memoSize int
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithAnalyzer replaces the default varscope.Finder.
func WithAnalyzer(a varscope.Analyzer) Option {
	return func(r *Rewriter) { r.analyzer = a }
}

// WithPassIDGenerator replaces the UUIDv7 pass ID generator.
func WithPassIDGenerator(g PassIDGenerator) Option {
	return func(r *Rewriter) { r.ids = g }
}

// WithMetrics records decisions in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Rewriter) { r.metrics = m }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Rewriter) { r.logger = l }
}

// WithTracer forwards every classifier step to t.
func WithTracer(t joinclass.Tracer) Option {
	return func(r *Rewriter) { r.tracer = t }
}

// WithMemoSize bounds the per-pass scope memo. Zero disables memoization.
func WithMemoSize(n int) Option {
	return func(r *Rewriter) { r.memoSize = n }
}

// New returns a Rewriter.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{
		analyzer: varscope.Finder{},
		ids:      UUIDv7Generator{},
		metrics:  NewMetrics(nil),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		memoSize: varscope.DefaultMemoSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// pass holds the state of one Rewrite call.
type pass struct {
	ctx        context.Context
	id         string
	classifier *joinclass.Classifier
	result     *Result
	logger     *slog.Logger
	metrics    *Metrics
}

// Rewrite runs one pass over plan. A malformed plan yields an assertion
// failure error and no result. The context is checked between nodes.
func (r *Rewriter) Rewrite(ctx context.Context, plan algebra.Node) (*Result, error) {
	start := time.Now()
	id := r.ids.Generate()
	logger := r.logger.With(slog.String("pass_id", id))

	analyzer := r.analyzer
	if r.memoSize > 0 {
		memo, err := varscope.NewMemo(r.analyzer, r.memoSize)
		if err != nil {
			return nil, fmt.Errorf("create scope memo: %w", err)
		}
		analyzer = memo
	}
	var opts []joinclass.Option
	if r.tracer != nil {
		opts = append(opts, joinclass.WithTracer(r.tracer))
	}

	p := &pass{
		ctx:        ctx,
		id:         id,
		classifier: joinclass.New(analyzer, opts...),
		result:     &Result{PassID: id},
		logger:     logger,
		metrics:    r.metrics,
	}

	out, err := p.rewriteSafe(plan)
	if err != nil {
		if ctx.Err() == nil {
			r.metrics.defects.Inc()
		}
		logger.Error("rewrite pass failed", slog.Any("error", err))
		return nil, err
	}
	p.result.Plan = out

	r.metrics.passes.Inc()
	r.metrics.passDuration.Observe(time.Since(start).Seconds())
	logger.Debug("rewrite pass complete",
		slog.Int("joins", len(p.result.Joins)),
		slog.Int("linearized", p.result.Linearized),
	)
	return p.result, nil
}

func (p *pass) rewriteSafe(n algebra.Node) (out algebra.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = joinclass.CatchDefect(r)
		}
	}()
	return p.rewrite(n)
}

func (p *pass) rewrite(n algebra.Node) (algebra.Node, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}

	kids := algebra.Children(n)
	if len(kids) > 0 {
		newKids := make([]algebra.Node, len(kids))
		changed := false
		for i, k := range kids {
			nk, err := p.rewrite(k)
			if err != nil {
				return nil, err
			}
			newKids[i] = nk
			changed = changed || nk != k
		}
		if changed {
			n = algebra.WithChildren(n, newKids)
		}
	}

	join, ok := n.(*algebra.Join)
	if !ok {
		return n, nil
	}

	d, err := p.classifier.Classify(join.Left, join.Right)
	if err != nil {
		return nil, err
	}
	p.record(join, d)
	if !d.Linear {
		return n, nil
	}
	p.result.Linearized++
	return sequenceOf(join.Left, join.Right), nil
}

func (p *pass) record(join *algebra.Join, d joinclass.Decision) {
	p.result.Joins = append(p.result.Joins, JoinDecision{
		Left:     algebra.Format(join.Left),
		Right:    algebra.Format(join.Right),
		Decision: d,
	})
	rule := ""
	if !d.Linear {
		rule = d.Rule.String()
	}
	p.metrics.observeJoin(d.Linear, rule)
	p.logger.Debug("join site",
		slog.Bool("linear", d.Linear),
		slog.String("rule", rule),
		slog.String("left", d.LeftKind),
		slog.String("right", d.RightKind),
	)
}

// sequenceOf builds the sequence for an accepted join, absorbing a
// sequence on the left.
func sequenceOf(left, right algebra.Node) *algebra.Sequence {
	if seq, ok := left.(*algebra.Sequence); ok {
		subs := make([]algebra.Node, 0, len(seq.Subs)+1)
		subs = append(subs, seq.Subs...)
		return &algebra.Sequence{Subs: append(subs, right)}
	}
	return &algebra.Sequence{Subs: []algebra.Node{left, right}}
}
