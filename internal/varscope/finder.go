package varscope

import (
	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

// Finder is the default Analyzer. It has no state and is safe for
// concurrent use.
type Finder struct{}

var _ Analyzer = Finder{}

// Analyze computes the raw scope of n. It panics with an assertion failure
// on an operator outside the algebra vocabulary.
func (Finder) Analyze(n algebra.Node) Scope {
	return analyze(n)
}

func analyze(n algebra.Node) Scope {
	switch n := n.(type) {
	case *algebra.BGP:
		s := Empty()
		addTriples(s.Fixed, n.Triples)
		return s

	case *algebra.QuadPattern:
		s := Empty()
		addTerm(s.Fixed, n.Graph)
		addTriples(s.Fixed, n.Triples)
		return s

	case *algebra.Path:
		s := Empty()
		addTerm(s.Fixed, n.Subject)
		addTerm(s.Fixed, n.Object)
		return s

	case *algebra.Table:
		return tableScope(n)

	case *algebra.Distinct:
		return analyze(n.Sub)
	case *algebra.Reduced:
		return analyze(n.Sub)
	case *algebra.List:
		return analyze(n.Sub)
	case *algebra.Slice:
		return analyze(n.Sub)
	case *algebra.TopN:
		return analyze(n.Sub)
	case *algebra.Order:
		return analyze(n.Sub)
	case *algebra.Service:
		return analyze(n.Sub)
	case *algebra.Label:
		return analyze(n.Sub)

	case *algebra.Project:
		return analyze(n.Sub).restrict(ir.NewVarSet(n.Vars...))

	case *algebra.Graph:
		s := analyze(n.Sub)
		if v, ok := n.Name.(ir.Var); ok {
			s.Fixed = s.Fixed.Union(ir.NewVarSet(v))
		}
		return s

	case *algebra.Extend:
		return assignScope(analyze(n.Sub), n.Assignments)
	case *algebra.Assign:
		return assignScope(analyze(n.Sub), n.Assignments)

	case *algebra.Group:
		s := Empty()
		s.Fixed.Add(n.Keys...)
		for _, a := range n.Aggregates {
			s.Fixed.Add(a.Var)
		}
		return s

	case *algebra.Filter:
		s := analyze(n.Sub)
		mentioned := algebra.VarsMentioned(n.Exprs...)
		s.Filter = s.Filter.Union(mentioned)
		s.FilterOnly = s.FilterOnly.Union(mentioned.Minus(s.Bound()))
		return s

	case *algebra.PropFunc:
		s := Empty()
		if n.Sub != nil {
			s = analyze(n.Sub)
		}
		args := ir.NewVarSet()
		for _, t := range n.Subject {
			addTerm(args, t)
		}
		for _, t := range n.Object {
			addTerm(args, t)
		}
		s.Fixed = s.Fixed.Union(args)
		return s

	case *algebra.Join:
		return merge(analyze(n.Left), analyze(n.Right))
	case *algebra.Lateral:
		return merge(analyze(n.Left), analyze(n.Right))
	case *algebra.Sequence:
		s := Empty()
		for _, sub := range n.Subs {
			s = merge(s, analyze(sub))
		}
		return s

	case *algebra.LeftJoin:
		return leftJoinScope(n)

	case *algebra.Union:
		return unionScope([]algebra.Node{n.Left, n.Right})
	case *algebra.Disjunction:
		return unionScope(n.Subs)

	case *algebra.Minus:
		return analyze(n.Left)
	case *algebra.SemiJoin:
		return analyze(n.Left)
	case *algebra.AntiJoin:
		return analyze(n.Left)

	case *algebra.Ext:
		if n.Effective == nil {
			return Empty()
		}
		return analyze(n.Effective)

	default:
		panic(algebra.Unhandled(n))
	}
}

func addTerm(out ir.VarSet, t ir.Term) {
	if v, ok := t.(ir.Var); ok {
		out.Add(v)
	}
}

func addTriples(out ir.VarSet, triples []algebra.Triple) {
	for _, tr := range triples {
		addTerm(out, tr.S)
		addTerm(out, tr.P)
		addTerm(out, tr.O)
	}
}

// tableScope fixes a column only when every row binds it.
func tableScope(t *algebra.Table) Scope {
	s := Empty()
	for _, v := range t.Vars {
		always := true
		for _, row := range t.Rows {
			if row.Get(v) == nil {
				always = false
				break
			}
		}
		if always {
			s.Fixed.Add(v)
		} else {
			s.Opt.Add(v)
		}
	}
	return s
}

func assignScope(s Scope, assignments []algebra.VarExpr) Scope {
	defined := ir.NewVarSet()
	used := ir.NewVarSet()
	for _, a := range assignments {
		defined.Add(a.Var)
		used.AddAll(algebra.VarsMentioned(a.Expr))
	}
	s.Fixed = s.Fixed.Union(defined)
	s.Assign = s.Assign.Union(used)
	return s
}

// leftJoinScope keeps the left side as is and demotes everything the
// right side binds to optional. Variables of the join condition bound by
// neither side are filter-only.
func leftJoinScope(n *algebra.LeftJoin) Scope {
	left := analyze(n.Left)
	right := analyze(n.Right)
	s := Scope{
		Fixed:      left.Fixed.Clone(),
		Opt:        left.Opt.Union(right.Bound()),
		Filter:     left.Filter.Union(right.Filter),
		FilterOnly: left.FilterOnly.Union(right.FilterOnly),
		Assign:     left.Assign.Union(right.Assign),
	}
	if len(n.Exprs) > 0 {
		mentioned := algebra.VarsMentioned(n.Exprs...)
		s.Filter.AddAll(mentioned)
		s.FilterOnly.AddAll(mentioned.Minus(left.Bound()).Minus(right.Bound()))
	}
	return s
}

// unionScope fixes only what every branch fixes.
func unionScope(branches []algebra.Node) Scope {
	if len(branches) == 0 {
		return Empty()
	}
	s := Empty()
	var fixed ir.VarSet
	for i, b := range branches {
		bs := analyze(b)
		if i == 0 {
			fixed = bs.Fixed.Clone()
		} else {
			fixed = fixed.Intersect(bs.Fixed)
		}
		s.Opt.AddAll(bs.Bound())
		s.Filter.AddAll(bs.Filter)
		s.FilterOnly.AddAll(bs.FilterOnly)
		s.Assign.AddAll(bs.Assign)
	}
	s.Fixed = fixed
	s.Opt = s.Opt.Minus(fixed)
	return s
}
