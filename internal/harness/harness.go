package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/dataset"
	"github.com/roach88/linjoin/internal/eval"
	"github.com/roach88/linjoin/internal/joinclass"
	"github.com/roach88/linjoin/internal/rewrite"
	"github.com/roach88/linjoin/internal/store"
	"github.com/roach88/linjoin/internal/testutil"
)

// Harness runs the cases of one scenario.
type Harness struct {
	classifier *joinclass.Classifier
	rewriter   *rewrite.Rewriter
	evaluator  *eval.Evaluator // nil without a dataset
	logger     *slog.Logger
}

type options struct {
	logger       *slog.Logger
	maxSolutions int
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger. Classifier steps are logged at debug level.
// The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxSolutions bounds intermediate results of differential
// evaluation (see eval.WithMaxSolutions).
func WithMaxSolutions(n int) Option {
	return func(o *options) { o.maxSolutions = n }
}

// Run executes a scenario and returns the result.
//
// Each scenario with a dataset gets a fresh in-memory store. Rewrites use
// a constant pass ID so results are reproducible. The returned error is
// reserved for failures outside the cases themselves: an unreadable
// dataset, a store error or a cancelled context.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	o := options{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxSolutions: eval.DefaultMaxSolutions,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ids := testutil.NewConstantPassID(s.PassID)
	h := &Harness{
		classifier: joinclass.New(nil, joinclass.WithTracer(joinclass.LogTracer{Logger: o.logger})),
		rewriter: rewrite.New(
			rewrite.WithPassIDGenerator(ids),
			rewrite.WithLogger(o.logger),
		),
		logger: o.logger.With(slog.String("scenario", s.Name)),
	}

	if s.Dataset != "" {
		ds, err := dataset.LoadFile(s.Dataset)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		st, err := store.OpenMemory()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		if _, err := st.LoadDataset(ctx, ds.Name, ds.Quads); err != nil {
			return nil, err
		}
		h.evaluator = eval.New(st.Dataset(ds.Name), eval.WithMaxSolutions(o.maxSolutions))
		h.logger.Debug("dataset loaded",
			slog.String("dataset", ds.Name),
			slog.Int("quads", len(ds.Quads)),
		)
	}

	result := NewResult(s.Name)
	result.PassID = ids.Generate()
	for _, c := range s.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, err
		}
		result.add(cr)
	}

	h.logger.Info("scenario complete",
		slog.Bool("pass", result.Pass),
		slog.Int("cases", len(result.Cases)),
	)
	return result, nil
}

func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, error) {
	cr := CaseResult{Name: c.Name, Pass: true}

	left, err := algebra.Parse(c.Left)
	if err != nil {
		cr.addError(fmt.Sprintf("left: %v", err))
		return cr, nil
	}
	right, err := algebra.Parse(c.Right)
	if err != nil {
		cr.addError(fmt.Sprintf("right: %v", err))
		return cr, nil
	}
	cr.Left, cr.Right = algebra.Format(left), algebra.Format(right)

	d, err := h.classifier.Classify(left, right)
	if err != nil {
		cr.addError(fmt.Sprintf("classify: %v", err))
		return cr, nil
	}
	cr.Decision = &d

	rw, err := h.rewriter.Rewrite(ctx, &algebra.Join{Left: left, Right: right})
	if err != nil {
		if ctx.Err() != nil {
			return cr, err
		}
		cr.addError(fmt.Sprintf("rewrite: %v", err))
	} else {
		cr.Rewritten = algebra.Format(rw.Plan)
	}

	if h.evaluator != nil {
		cmp, err := h.evaluator.Compare(ctx, left, right)
		switch {
		case err == nil:
			cr.Comparison = cmp
		case ctx.Err() != nil:
			return cr, err
		case eval.IsUnsupported(err):
			cr.Unsupported = true
		default:
			cr.addError(fmt.Sprintf("evaluate: %v", err))
		}
	}

	for _, e := range checkCase(&cr, c) {
		cr.addError(e.Error())
	}

	h.logger.Debug("case complete",
		slog.String("case", c.Name),
		slog.Bool("linear", d.Linear),
		slog.Bool("pass", cr.Pass),
	)
	return cr, nil
}
