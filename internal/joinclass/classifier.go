package joinclass

import (
	"github.com/cockroachdb/errors"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
	"github.com/roach88/linjoin/internal/varscope"
)

// Classifier decides join linearity against one variable-scope analyzer.
type Classifier struct {
	analyzer varscope.Analyzer
	tracer   Tracer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTracer sends every step and decision to t.
func WithTracer(t Tracer) Option {
	return func(c *Classifier) {
		c.tracer = t
	}
}

// New returns a Classifier that queries analyzer for variable scopes.
// A nil analyzer means varscope.Finder.
func New(analyzer varscope.Analyzer, opts ...Option) *Classifier {
	if analyzer == nil {
		analyzer = varscope.Finder{}
	}
	c := &Classifier{analyzer: analyzer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsLinear reports whether right may be evaluated by substituting each
// left solution into it. It panics with an assertion failure on defects.
func IsLinear(left, right algebra.Node) bool {
	return New(nil).IsLinear(left, right)
}

// IsLinear reports whether right may be evaluated by substituting each
// left solution into it. It panics with an assertion failure on defects.
func (c *Classifier) IsLinear(left, right algebra.Node) bool {
	return c.Explain(left, right).Linear
}

// Classify is Explain with defects returned as errors instead of panics.
func (c *Classifier) Classify(left, right algebra.Node) (d Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = CatchDefect(r)
		}
	}()
	return c.Explain(left, right), nil
}

// Explain runs the decision procedure and returns its full record.
func (c *Classifier) Explain(left, right algebra.Node) Decision {
	var d Decision
	check := func(rule Rule, passed bool, detail string) bool {
		s := Step{Rule: rule, Passed: passed, Detail: detail}
		d.Steps = append(d.Steps, s)
		if c.tracer != nil {
			c.tracer.OnStep(s)
		}
		if !passed {
			d.Rule = rule
		}
		return passed
	}
	c.decide(left, right, &d, check)
	d.Linear = d.Rule == RuleNone
	if c.tracer != nil {
		c.tracer.OnDecision(d)
	}
	return d
}

func (c *Classifier) decide(left, right algebra.Node, d *Decision, check func(Rule, bool, string) bool) {
	if kind, found := findNegation(left); found {
		check(RuleNegation, false, "left="+kind.String())
		return
	}
	if kind, found := findNegation(right); found {
		check(RuleNegation, false, "right="+kind.String())
		return
	}
	check(RuleNegation, true, "")

	left, right = Resolve(left), Resolve(right)
	d.LeftKind, d.RightKind = left.Kind().String(), right.Kind().String()

	if !check(RuleModifier, !isModifier(right), "right="+d.RightKind) {
		return
	}

	lb, rb := BasisOf(left), BasisOf(right)
	bases := "left=" + lb.String() + " right=" + rb.String()
	if !check(RuleTableTable, lb != BasisTable || rb != BasisTable, bases) {
		return
	}

	sets := c.checkSets(left, right)
	d.Sets = &sets

	conflict := sets.RightFilterOnly.Intersect(sets.LeftFixed.Union(sets.LeftOpt))
	if !check(RuleFilterOnly, conflict.Len() == 0, conflictDetail(conflict)) {
		return
	}
	conflict = sets.RightOpt.Intersect(sets.LeftFixed.Union(sets.LeftOpt))
	if !check(RuleOptional, conflict.Len() == 0, conflictDetail(conflict)) {
		return
	}
	conflict = sets.RightFilter.Intersect(sets.LeftFixed)
	if !check(RuleFilterScope, conflict.Len() == 0, conflictDetail(conflict)) {
		return
	}
	conflict = sets.RightAssign.Intersect(sets.LeftFixed)
	check(RuleAssignScope, conflict.Len() == 0, conflictDetail(conflict))
}

// checkSets queries the analyzer for both resolved sides and normalizes
// the result: fixed dominates optional, filter and assign.
func (c *Classifier) checkSets(left, right algebra.Node) CheckSets {
	ls := c.analyzer.Analyze(left)
	if err := ls.Validate(); err != nil {
		panic(errors.Wrap(err, "left side"))
	}
	rs := c.analyzer.Analyze(right)
	if err := rs.Validate(); err != nil {
		panic(errors.Wrap(err, "right side"))
	}
	return CheckSets{
		LeftFixed:       ls.Fixed,
		LeftOpt:         ls.Opt.Minus(ls.Fixed),
		RightFixed:      rs.Fixed,
		RightOpt:        rs.Opt.Minus(rs.Fixed),
		RightFilter:     rs.Filter.Minus(rs.Fixed),
		RightFilterOnly: rs.FilterOnly,
		RightAssign:     rs.Assign.Minus(rs.Fixed),
	}
}

func conflictDetail(conflict ir.VarSet) string {
	if conflict.Len() == 0 {
		return ""
	}
	return conflict.String()
}
