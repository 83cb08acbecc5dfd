package eval

import (
	"context"
	"slices"
	"strings"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

// Source supplies quads to the evaluator. *store.Store implements it.
//
// Match follows the graph convention of ir.Quad: a nil G selects the
// default graph, a variable selects every named graph and an IRI selects
// that graph. Non-concrete S, P and O positions are wildcards.
type Source interface {
	Match(ctx context.Context, pattern ir.Quad) ([]ir.Quad, error)
	Graphs(ctx context.Context) ([]ir.IRI, error)
}

// DefaultMaxSolutions bounds every intermediate result.
const DefaultMaxSolutions = 100_000

// Evaluator evaluates plans against a Source. Safe for concurrent use if
// the Source is.
type Evaluator struct {
	source       Source
	maxSolutions int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxSolutions sets the intermediate result limit. n <= 0 disables it.
func WithMaxSolutions(n int) Option {
	return func(e *Evaluator) { e.maxSolutions = n }
}

// New creates an evaluator over src.
func New(src Source, opts ...Option) *Evaluator {
	e := &Evaluator{source: src, maxSolutions: DefaultMaxSolutions}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval returns the solutions of n against the default graph.
//
// Panics with algebra.Unhandled on a nil node.
func (e *Evaluator) Eval(ctx context.Context, n algebra.Node) ([]ir.Binding, error) {
	return e.eval(ctx, n, nil)
}

// eval evaluates n with graph as the active graph (nil = default).
func (e *Evaluator) eval(ctx context.Context, n algebra.Node, graph ir.Term) ([]ir.Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := e.evalNode(ctx, n, graph)
	if err != nil {
		return nil, err
	}
	if e.maxSolutions > 0 && len(out) > e.maxSolutions {
		return nil, newLimitError(n.Kind(), len(out), e.maxSolutions)
	}
	return out, nil
}

func (e *Evaluator) evalNode(ctx context.Context, n algebra.Node, graph ir.Term) ([]ir.Binding, error) {
	switch n := n.(type) {
	case *algebra.BGP:
		return e.evalBGP(ctx, n.Triples, graph)
	case *algebra.QuadPattern:
		return e.evalGraph(ctx, n.Graph, &algebra.BGP{Triples: n.Triples})
	case *algebra.Table:
		out := make([]ir.Binding, 0, len(n.Rows))
		for _, row := range n.Rows {
			out = append(out, row.Clone())
		}
		return out, nil

	case *algebra.Distinct:
		return e.unary(ctx, n.Sub, graph, distinct)
	case *algebra.Reduced:
		return e.unary(ctx, n.Sub, graph, distinct)
	case *algebra.Project:
		vars := ir.NewVarSet(n.Vars...)
		return e.unary(ctx, n.Sub, graph, func(rows []ir.Binding) []ir.Binding {
			for i, row := range rows {
				rows[i] = row.Restrict(vars)
			}
			return rows
		})
	case *algebra.List:
		return e.eval(ctx, n.Sub, graph)
	case *algebra.Label:
		return e.eval(ctx, n.Sub, graph)
	case *algebra.Slice:
		return e.unary(ctx, n.Sub, graph, func(rows []ir.Binding) []ir.Binding {
			return slice(rows, n.Start, n.Length)
		})
	case *algebra.Order:
		rows, err := e.eval(ctx, n.Sub, graph)
		if err != nil {
			return nil, err
		}
		return e.order(ctx, rows, n.Conditions, graph)
	case *algebra.TopN:
		rows, err := e.eval(ctx, n.Sub, graph)
		if err != nil {
			return nil, err
		}
		rows, err = e.order(ctx, rows, n.Conditions, graph)
		if err != nil {
			return nil, err
		}
		return slice(rows, 0, n.Limit), nil
	case *algebra.Graph:
		return e.evalGraph(ctx, n.Name, n.Sub)
	case *algebra.Extend:
		rows, err := e.eval(ctx, n.Sub, graph)
		if err != nil {
			return nil, err
		}
		return e.extend(ctx, rows, n.Assignments, graph)
	case *algebra.Assign:
		rows, err := e.eval(ctx, n.Sub, graph)
		if err != nil {
			return nil, err
		}
		return e.extend(ctx, rows, n.Assignments, graph)
	case *algebra.Group:
		rows, err := e.eval(ctx, n.Sub, graph)
		if err != nil {
			return nil, err
		}
		return e.group(ctx, rows, n, graph)
	case *algebra.Filter:
		rows, err := e.eval(ctx, n.Sub, graph)
		if err != nil {
			return nil, err
		}
		out := rows[:0]
		for _, row := range rows {
			ok, err := e.test(ctx, n.Exprs, row, graph)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, row)
			}
		}
		return out, nil

	case *algebra.Join:
		left, right, err := e.binary(ctx, n.Left, n.Right, graph)
		if err != nil {
			return nil, err
		}
		return join(left, right), nil
	case *algebra.LeftJoin:
		left, right, err := e.binary(ctx, n.Left, n.Right, graph)
		if err != nil {
			return nil, err
		}
		return e.leftJoin(ctx, left, right, n.Exprs, graph)
	case *algebra.Union:
		left, right, err := e.binary(ctx, n.Left, n.Right, graph)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case *algebra.Minus:
		left, right, err := e.binary(ctx, n.Left, n.Right, graph)
		if err != nil {
			return nil, err
		}
		return keepIf(left, func(l ir.Binding) bool {
			return !slices.ContainsFunc(right, func(r ir.Binding) bool {
				return l.Compatible(r) && l.Vars().Intersects(r.Vars())
			})
		}), nil
	case *algebra.SemiJoin:
		left, right, err := e.binary(ctx, n.Left, n.Right, graph)
		if err != nil {
			return nil, err
		}
		return keepIf(left, func(l ir.Binding) bool {
			return slices.ContainsFunc(right, l.Compatible)
		}), nil
	case *algebra.AntiJoin:
		left, right, err := e.binary(ctx, n.Left, n.Right, graph)
		if err != nil {
			return nil, err
		}
		return keepIf(left, func(l ir.Binding) bool {
			return !slices.ContainsFunc(right, l.Compatible)
		}), nil

	case *algebra.Sequence:
		return e.sequence(ctx, n.Subs, graph)
	case *algebra.Disjunction:
		var out []ir.Binding
		for _, sub := range n.Subs {
			rows, err := e.eval(ctx, sub, graph)
			if err != nil {
				return nil, err
			}
			out = append(out, rows...)
		}
		return out, nil

	case *algebra.Ext:
		if n.Effective == nil {
			return nil, newUnsupported(n)
		}
		return e.eval(ctx, n.Effective, graph)
	case *algebra.Path, *algebra.Service, *algebra.PropFunc, *algebra.Lateral:
		return nil, newUnsupported(n)
	default:
		panic(algebra.Unhandled(n))
	}
}

func (e *Evaluator) unary(ctx context.Context, sub algebra.Node, graph ir.Term, f func([]ir.Binding) []ir.Binding) ([]ir.Binding, error) {
	rows, err := e.eval(ctx, sub, graph)
	if err != nil {
		return nil, err
	}
	return f(rows), nil
}

func (e *Evaluator) binary(ctx context.Context, l, r algebra.Node, graph ir.Term) ([]ir.Binding, []ir.Binding, error) {
	left, err := e.eval(ctx, l, graph)
	if err != nil {
		return nil, nil, err
	}
	right, err := e.eval(ctx, r, graph)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// evalBGP extends the solutions one triple pattern at a time, pushing
// already-bound values into the source lookup.
func (e *Evaluator) evalBGP(ctx context.Context, triples []algebra.Triple, graph ir.Term) ([]ir.Binding, error) {
	sols := []ir.Binding{{}}
	for _, tr := range triples {
		var next []ir.Binding
		for _, sol := range sols {
			pattern := ir.Quad{
				G: graph,
				S: resolveTerm(tr.S, sol),
				P: resolveTerm(tr.P, sol),
				O: resolveTerm(tr.O, sol),
			}
			quads, err := e.source.Match(ctx, pattern)
			if err != nil {
				return nil, err
			}
			for _, q := range quads {
				if b, ok := bindQuad(sol, tr, q); ok {
					next = append(next, b)
				}
			}
		}
		sols = next
		if len(sols) == 0 {
			break
		}
	}
	return sols, nil
}

func resolveTerm(t ir.Term, sol ir.Binding) ir.Term {
	if v, ok := t.(ir.Var); ok {
		if val, bound := sol[v]; bound {
			return val
		}
	}
	return t
}

// bindQuad extends sol with the variables of tr matched against q.
// Returns false when a repeated variable would take two values.
func bindQuad(sol ir.Binding, tr algebra.Triple, q ir.Quad) (ir.Binding, bool) {
	out := sol.Clone()
	for _, pos := range [3][2]ir.Term{{tr.S, q.S}, {tr.P, q.P}, {tr.O, q.O}} {
		pat, val := pos[0], pos[1]
		v, isVar := pat.(ir.Var)
		if !isVar {
			if !ir.TermsEqual(pat, val) {
				return nil, false
			}
			continue
		}
		if cur, bound := out[v]; bound {
			if !ir.TermsEqual(cur, val) {
				return nil, false
			}
			continue
		}
		out[v] = val
	}
	return out, true
}

// evalGraph evaluates sub in the graph named by name. A variable ranges
// over every named graph and is bound in each solution.
func (e *Evaluator) evalGraph(ctx context.Context, name ir.Term, sub algebra.Node) ([]ir.Binding, error) {
	v, isVar := name.(ir.Var)
	if !isVar {
		iri, ok := name.(ir.IRI)
		if !ok {
			// Only IRIs name graphs.
			return nil, nil
		}
		return e.eval(ctx, sub, iri)
	}

	graphs, err := e.source.Graphs(ctx)
	if err != nil {
		return nil, err
	}
	var out []ir.Binding
	for _, g := range graphs {
		rows, err := e.eval(ctx, sub, g)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if cur, bound := row[v]; bound {
				if ir.TermsEqual(cur, g) {
					out = append(out, row)
				}
				continue
			}
			row[v] = g
			out = append(out, row)
		}
	}
	return out, nil
}

// extend evaluates assignments left to right. An expression error leaves
// the variable unbound. A value that disagrees with an existing binding
// drops the row.
func (e *Evaluator) extend(ctx context.Context, rows []ir.Binding, assignments []algebra.VarExpr, graph ir.Term) ([]ir.Binding, error) {
	out := make([]ir.Binding, 0, len(rows))
rows:
	for _, row := range rows {
		sol := row.Clone()
		for _, a := range assignments {
			val, err := e.evalExpr(ctx, a.Expr, sol, graph)
			if err != nil {
				if isExprError(err) {
					continue
				}
				return nil, err
			}
			if cur, bound := sol[a.Var]; bound {
				if !ir.TermsEqual(cur, val) {
					continue rows
				}
				continue
			}
			sol[a.Var] = val
		}
		out = append(out, sol)
	}
	return out, nil
}

func (e *Evaluator) leftJoin(ctx context.Context, left, right []ir.Binding, exprs []algebra.Expr, graph ir.Term) ([]ir.Binding, error) {
	var out []ir.Binding
	for _, l := range left {
		matched := false
		for _, r := range right {
			merged, ok := l.Merge(r)
			if !ok {
				continue
			}
			pass, err := e.test(ctx, exprs, merged, graph)
			if err != nil {
				return nil, err
			}
			if pass {
				out = append(out, merged)
				matched = true
			}
		}
		if !matched {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

// sequence is the substitution join: every solution of one step is pushed
// into the next.
func (e *Evaluator) sequence(ctx context.Context, subs []algebra.Node, graph ir.Term) ([]ir.Binding, error) {
	sols := []ir.Binding{{}}
	for _, sub := range subs {
		var next []ir.Binding
		for _, mu := range sols {
			rows, err := e.eval(ctx, Substitute(sub, mu), graph)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				if merged, ok := mu.Merge(row); ok {
					next = append(next, merged)
				}
			}
		}
		if e.maxSolutions > 0 && len(next) > e.maxSolutions {
			return nil, newLimitError(algebra.KindSequence, len(next), e.maxSolutions)
		}
		sols = next
	}
	return sols, nil
}

func (e *Evaluator) group(ctx context.Context, rows []ir.Binding, n *algebra.Group, graph ir.Term) ([]ir.Binding, error) {
	type bucket struct {
		key  ir.Binding
		rows []ir.Binding
	}
	keys := ir.NewVarSet(n.Keys...)
	buckets := make(map[string]*bucket)
	var order []string
	for _, row := range rows {
		key := row.Restrict(keys)
		h := ir.BindingHash(key)
		b, ok := buckets[h]
		if !ok {
			b = &bucket{key: key}
			buckets[h] = b
			order = append(order, h)
		}
		b.rows = append(b.rows, row)
	}
	// Aggregation without keys always yields one group.
	if len(rows) == 0 && len(n.Keys) == 0 {
		buckets[""] = &bucket{key: ir.Binding{}}
		order = append(order, "")
	}

	out := make([]ir.Binding, 0, len(order))
	for _, h := range order {
		b := buckets[h]
		sol := b.key.Clone()
		for _, agg := range n.Aggregates {
			val, err := e.aggregate(ctx, agg, b.rows, graph)
			if err != nil {
				return nil, err
			}
			if val != nil {
				sol[agg.Var] = val
			}
		}
		out = append(out, sol)
	}
	return out, nil
}

// aggregate computes one aggregate over a group. A nil result leaves the
// variable unbound.
func (e *Evaluator) aggregate(ctx context.Context, agg algebra.Aggregate, rows []ir.Binding, graph ir.Term) (ir.Term, error) {
	fn := strings.ToLower(agg.Func)
	if fn == "count" && agg.Expr == nil {
		return ir.Int(len(rows)), nil
	}

	var vals []ir.Term
	for _, row := range rows {
		if agg.Expr == nil {
			continue
		}
		val, err := e.evalExpr(ctx, agg.Expr, row, graph)
		if err != nil {
			if isExprError(err) {
				continue
			}
			return nil, err
		}
		vals = append(vals, val)
	}

	switch fn {
	case "count":
		return ir.Int(len(vals)), nil
	case "sum":
		var sum ir.Int
		for _, v := range vals {
			i, ok := v.(ir.Int)
			if !ok {
				return nil, nil
			}
			sum += i
		}
		return sum, nil
	case "min", "max":
		if len(vals) == 0 {
			return nil, nil
		}
		best := vals[0]
		for _, v := range vals[1:] {
			c := ir.CompareTerms(v, best)
			if (fn == "min" && c < 0) || (fn == "max" && c > 0) {
				best = v
			}
		}
		return best, nil
	case "sample":
		if len(vals) == 0 {
			return nil, nil
		}
		return vals[0], nil
	default:
		return nil, &EvalError{
			Code:    ErrCodeUnsupported,
			Message: "unknown aggregate " + agg.Func,
			Kind:    algebra.KindGroup,
		}
	}
}

// order sorts rows stably by the conditions. Keys that fail to evaluate
// sort as unbound.
func (e *Evaluator) order(ctx context.Context, rows []ir.Binding, conds []algebra.SortCondition, graph ir.Term) ([]ir.Binding, error) {
	type keyed struct {
		row  ir.Binding
		keys []ir.Term
	}
	items := make([]keyed, len(rows))
	for i, row := range rows {
		keys := make([]ir.Term, len(conds))
		for j, c := range conds {
			val, err := e.evalExpr(ctx, c.Expr, row, graph)
			if err != nil && !isExprError(err) {
				return nil, err
			}
			keys[j] = val
		}
		items[i] = keyed{row: row, keys: keys}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		for j, c := range conds {
			r := ir.CompareTerms(a.keys[j], b.keys[j])
			if c.Desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})
	out := make([]ir.Binding, len(items))
	for i, it := range items {
		out[i] = it.row
	}
	return out, nil
}

func join(left, right []ir.Binding) []ir.Binding {
	var out []ir.Binding
	for _, l := range left {
		for _, r := range right {
			if merged, ok := l.Merge(r); ok {
				out = append(out, merged)
			}
		}
	}
	return out
}

func keepIf(rows []ir.Binding, keep func(ir.Binding) bool) []ir.Binding {
	out := make([]ir.Binding, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// distinct keeps the first occurrence of each solution.
func distinct(rows []ir.Binding) []ir.Binding {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		h := ir.BindingHash(row)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, row)
	}
	return out
}

// slice applies OFFSET/LIMIT; -1 means unset.
func slice(rows []ir.Binding, start, length int64) []ir.Binding {
	if start > 0 {
		if start >= int64(len(rows)) {
			return nil
		}
		rows = rows[start:]
	}
	if length >= 0 && length < int64(len(rows)) {
		rows = rows[:length]
	}
	return rows
}
