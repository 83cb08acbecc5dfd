package eval

import (
	"context"
	"slices"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

// EvalJoin evaluates join(left, right).
func (e *Evaluator) EvalJoin(ctx context.Context, left, right algebra.Node) ([]ir.Binding, error) {
	return e.Eval(ctx, &algebra.Join{Left: left, Right: right})
}

// EvalSequence evaluates sequence(left, right).
func (e *Evaluator) EvalSequence(ctx context.Context, left, right algebra.Node) ([]ir.Binding, error) {
	return e.Eval(ctx, &algebra.Sequence{Subs: []algebra.Node{left, right}})
}

// Comparison holds both evaluations of one join site.
type Comparison struct {
	Join     []ir.Binding `json:"join"`
	Sequence []ir.Binding `json:"sequence"`
	Same     bool         `json:"same"`
}

// Compare evaluates left and right under both join strategies.
func (e *Evaluator) Compare(ctx context.Context, left, right algebra.Node) (*Comparison, error) {
	joined, err := e.EvalJoin(ctx, left, right)
	if err != nil {
		return nil, err
	}
	seq, err := e.EvalSequence(ctx, left, right)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		Join:     joined,
		Sequence: seq,
		Same:     SameSolutions(joined, seq),
	}, nil
}

// SameSolutions reports whether a and b are equal as multisets.
func SameSolutions(a, b []ir.Binding) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[ir.BindingHash(s)]++
	}
	for _, s := range b {
		h := ir.BindingHash(s)
		if counts[h] == 0 {
			return false
		}
		counts[h]--
	}
	return true
}

// Canonical renders solutions in sorted canonical form, one per entry.
// Duplicates are kept.
func Canonical(sols []ir.Binding) []string {
	out := make([]string, len(sols))
	for i, s := range sols {
		out[i] = ir.CanonicalBinding(s)
	}
	slices.Sort(out)
	return out
}
