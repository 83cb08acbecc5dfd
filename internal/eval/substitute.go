package eval

import (
	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

// Substitute returns n with every variable bound in mu replaced by its
// value wherever the variable is visible. n is never modified; unchanged
// leaves may be shared with the result.
//
// Panics with algebra.Unhandled on a nil node.
func Substitute(n algebra.Node, mu ir.Binding) algebra.Node {
	if len(mu) == 0 {
		if n == nil {
			panic(algebra.Unhandled(n))
		}
		return n
	}
	switch n := n.(type) {
	case *algebra.BGP:
		return &algebra.BGP{Triples: substTriples(n.Triples, mu)}
	case *algebra.QuadPattern:
		return &algebra.QuadPattern{Graph: substTerm(n.Graph, mu), Triples: substTriples(n.Triples, mu)}
	case *algebra.Path:
		return &algebra.Path{Subject: substTerm(n.Subject, mu), Path: n.Path, Object: substTerm(n.Object, mu)}
	case *algebra.Table:
		return substTable(n, mu)

	case *algebra.Distinct:
		return &algebra.Distinct{Sub: Substitute(n.Sub, mu)}
	case *algebra.Reduced:
		return &algebra.Reduced{Sub: Substitute(n.Sub, mu)}
	case *algebra.Project:
		inner := mu.Restrict(ir.NewVarSet(n.Vars...))
		return &algebra.Project{Vars: n.Vars, Sub: Substitute(n.Sub, inner)}
	case *algebra.List:
		return &algebra.List{Sub: Substitute(n.Sub, mu)}
	case *algebra.Slice:
		return &algebra.Slice{Start: n.Start, Length: n.Length, Sub: Substitute(n.Sub, mu)}
	case *algebra.TopN:
		return &algebra.TopN{Limit: n.Limit, Conditions: substConds(n.Conditions, mu), Sub: Substitute(n.Sub, mu)}
	case *algebra.Order:
		return &algebra.Order{Conditions: substConds(n.Conditions, mu), Sub: Substitute(n.Sub, mu)}
	case *algebra.Graph:
		return &algebra.Graph{Name: substTerm(n.Name, mu), Sub: Substitute(n.Sub, mu)}
	case *algebra.Service:
		return &algebra.Service{Endpoint: substTerm(n.Endpoint, mu), Silent: n.Silent, Sub: Substitute(n.Sub, mu)}
	case *algebra.Extend:
		return &algebra.Extend{Assignments: substVarExprs(n.Assignments, mu), Sub: Substitute(n.Sub, mu)}
	case *algebra.Assign:
		return &algebra.Assign{Assignments: substVarExprs(n.Assignments, mu), Sub: Substitute(n.Sub, mu)}
	case *algebra.Group:
		// Only the grouping keys are visible through a group.
		inner := mu.Restrict(ir.NewVarSet(n.Keys...))
		aggs := make([]algebra.Aggregate, len(n.Aggregates))
		for i, a := range n.Aggregates {
			aggs[i] = algebra.Aggregate{Var: a.Var, Func: a.Func, Expr: substExpr(a.Expr, inner)}
		}
		return &algebra.Group{Keys: n.Keys, Aggregates: aggs, Sub: Substitute(n.Sub, inner)}
	case *algebra.Filter:
		return &algebra.Filter{Exprs: substExprs(n.Exprs, mu), Sub: Substitute(n.Sub, mu)}
	case *algebra.Label:
		return &algebra.Label{Text: n.Text, Sub: Substitute(n.Sub, mu)}
	case *algebra.PropFunc:
		out := &algebra.PropFunc{
			Property: substTerm(n.Property, mu),
			Subject:  substTerms(n.Subject, mu),
			Object:   substTerms(n.Object, mu),
		}
		if n.Sub != nil {
			out.Sub = Substitute(n.Sub, mu)
		}
		return out

	case *algebra.Join:
		return &algebra.Join{Left: Substitute(n.Left, mu), Right: Substitute(n.Right, mu)}
	case *algebra.LeftJoin:
		return &algebra.LeftJoin{Left: Substitute(n.Left, mu), Right: Substitute(n.Right, mu), Exprs: substExprs(n.Exprs, mu)}
	case *algebra.Union:
		return &algebra.Union{Left: Substitute(n.Left, mu), Right: Substitute(n.Right, mu)}
	case *algebra.Minus:
		return &algebra.Minus{Left: Substitute(n.Left, mu), Right: Substitute(n.Right, mu)}
	case *algebra.SemiJoin:
		return &algebra.SemiJoin{Left: Substitute(n.Left, mu), Right: Substitute(n.Right, mu)}
	case *algebra.AntiJoin:
		return &algebra.AntiJoin{Left: Substitute(n.Left, mu), Right: Substitute(n.Right, mu)}
	case *algebra.Lateral:
		return &algebra.Lateral{Left: Substitute(n.Left, mu), Right: Substitute(n.Right, mu)}
	case *algebra.Sequence:
		return &algebra.Sequence{Subs: substNodes(n.Subs, mu)}
	case *algebra.Disjunction:
		return &algebra.Disjunction{Subs: substNodes(n.Subs, mu)}

	case *algebra.Ext:
		if n.Effective == nil {
			return n
		}
		return &algebra.Ext{Name: n.Name, Effective: Substitute(n.Effective, mu)}
	default:
		panic(algebra.Unhandled(n))
	}
}

func substTerm(t ir.Term, mu ir.Binding) ir.Term {
	if v, ok := t.(ir.Var); ok {
		if val, bound := mu[v]; bound {
			return val
		}
	}
	return t
}

func substTerms(ts []ir.Term, mu ir.Binding) []ir.Term {
	if ts == nil {
		return nil
	}
	out := make([]ir.Term, len(ts))
	for i, t := range ts {
		out[i] = substTerm(t, mu)
	}
	return out
}

func substTriples(triples []algebra.Triple, mu ir.Binding) []algebra.Triple {
	out := make([]algebra.Triple, len(triples))
	for i, tr := range triples {
		out[i] = algebra.Triple{S: substTerm(tr.S, mu), P: substTerm(tr.P, mu), O: substTerm(tr.O, mu)}
	}
	return out
}

// substTable drops rows that disagree with mu and removes mu's variables
// from the rest.
func substTable(t *algebra.Table, mu ir.Binding) *algebra.Table {
	out := &algebra.Table{}
	for _, v := range t.Vars {
		if _, bound := mu[v]; !bound {
			out.Vars = append(out.Vars, v)
		}
	}
	for _, row := range t.Rows {
		if !row.Compatible(mu) {
			continue
		}
		kept := make(ir.Binding, len(row))
		for v, val := range row {
			if _, bound := mu[v]; !bound {
				kept[v] = val
			}
		}
		out.Rows = append(out.Rows, kept)
	}
	return out
}

func substNodes(subs []algebra.Node, mu ir.Binding) []algebra.Node {
	out := make([]algebra.Node, len(subs))
	for i, s := range subs {
		out[i] = Substitute(s, mu)
	}
	return out
}

func substExpr(x algebra.Expr, mu ir.Binding) algebra.Expr {
	switch x := x.(type) {
	case nil:
		return nil
	case *algebra.ExprVar:
		if val, bound := mu[x.Var]; bound {
			return &algebra.ExprConst{Value: val}
		}
		return x
	case *algebra.ExprConst:
		if v, ok := x.Value.(ir.Var); ok {
			if val, bound := mu[v]; bound {
				return &algebra.ExprConst{Value: val}
			}
		}
		return x
	case *algebra.ExprCall:
		args := make([]algebra.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = substExpr(a, mu)
		}
		return &algebra.ExprCall{Op: x.Op, Args: args}
	case *algebra.ExprExists:
		return &algebra.ExprExists{Not: x.Not, Pattern: Substitute(x.Pattern, mu)}
	default:
		panic(algebra.Unhandled(x))
	}
}

func substExprs(exprs []algebra.Expr, mu ir.Binding) []algebra.Expr {
	if exprs == nil {
		return nil
	}
	out := make([]algebra.Expr, len(exprs))
	for i, x := range exprs {
		out[i] = substExpr(x, mu)
	}
	return out
}

func substVarExprs(assignments []algebra.VarExpr, mu ir.Binding) []algebra.VarExpr {
	out := make([]algebra.VarExpr, len(assignments))
	for i, a := range assignments {
		out[i] = algebra.VarExpr{Var: a.Var, Expr: substExpr(a.Expr, mu)}
	}
	return out
}

func substConds(conds []algebra.SortCondition, mu ir.Binding) []algebra.SortCondition {
	out := make([]algebra.SortCondition, len(conds))
	for i, c := range conds {
		out[i] = algebra.SortCondition{Expr: substExpr(c.Expr, mu), Desc: c.Desc}
	}
	return out
}
