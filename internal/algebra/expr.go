package algebra

import (
	"github.com/roach88/linjoin/internal/ir"
)

// Expr is a filter / assignment expression.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	expr() // Marker method - seals interface to this package
}

// ExprVar references a variable.
type ExprVar struct {
	Var ir.Var
}

// ExprConst is a constant term.
type ExprConst struct {
	Value ir.Term
}

// ExprCall applies an operator or function to arguments.
//
// Operators understood by the evaluator:
//
//	= != < > <= >=   comparison
//	+ - *            integer arithmetic
//	&& || !          boolean connectives
//	bound            bound(?v)
type ExprCall struct {
	Op   string
	Args []Expr
}

// ExprExists is EXISTS / NOT EXISTS over a graph pattern.
type ExprExists struct {
	Not     bool
	Pattern Node
}

func (*ExprVar) expr()    {}
func (*ExprConst) expr()  {}
func (*ExprCall) expr()   {}
func (*ExprExists) expr() {}

// V is shorthand for a variable expression.
func V(name string) *ExprVar {
	return &ExprVar{Var: ir.NewVar(name)}
}

// C is shorthand for a constant expression.
func C(t ir.Term) *ExprConst {
	return &ExprConst{Value: t}
}

// Call is shorthand for an operator application.
func Call(op string, args ...Expr) *ExprCall {
	return &ExprCall{Op: op, Args: args}
}

// VarsMentioned returns every variable referenced by the expressions.
// For EXISTS the variables of the inner pattern count as mentioned.
func VarsMentioned(exprs ...Expr) ir.VarSet {
	out := ir.NewVarSet()
	for _, e := range exprs {
		addExprVars(out, e)
	}
	return out
}

func addExprVars(out ir.VarSet, e Expr) {
	switch e := e.(type) {
	case nil:
	case *ExprVar:
		out.Add(e.Var)
	case *ExprConst:
		if v, ok := e.Value.(ir.Var); ok {
			out.Add(v)
		}
	case *ExprCall:
		for _, a := range e.Args {
			addExprVars(out, a)
		}
	case *ExprExists:
		out.AddAll(MentionedVars(e.Pattern))
	default:
		panic(Unhandled(e))
	}
}

// MentionedVars returns every variable that appears anywhere in the tree:
// pattern positions, table columns, expressions and operator arguments.
// This is a syntactic over-approximation, not a scope analysis.
func MentionedVars(n Node) ir.VarSet {
	out := ir.NewVarSet()
	Walk(n, func(n Node) bool {
		addNodeVars(out, n)
		return true
	})
	return out
}

func addTermVar(out ir.VarSet, t ir.Term) {
	if v, ok := t.(ir.Var); ok {
		out.Add(v)
	}
}

func addTripleVars(out ir.VarSet, triples []Triple) {
	for _, tr := range triples {
		addTermVar(out, tr.S)
		addTermVar(out, tr.P)
		addTermVar(out, tr.O)
	}
}

func addNodeVars(out ir.VarSet, n Node) {
	switch n := n.(type) {
	case *BGP:
		addTripleVars(out, n.Triples)
	case *QuadPattern:
		addTermVar(out, n.Graph)
		addTripleVars(out, n.Triples)
	case *Path:
		addTermVar(out, n.Subject)
		addTermVar(out, n.Object)
	case *Table:
		out.Add(n.Vars...)
	case *Project:
		out.Add(n.Vars...)
	case *Graph:
		addTermVar(out, n.Name)
	case *Service:
		addTermVar(out, n.Endpoint)
	case *Extend:
		addVarExprs(out, n.Assignments)
	case *Assign:
		addVarExprs(out, n.Assignments)
	case *Group:
		out.Add(n.Keys...)
		for _, a := range n.Aggregates {
			out.Add(a.Var)
			addExprVars(out, a.Expr)
		}
	case *Filter:
		for _, e := range n.Exprs {
			addExprVars(out, e)
		}
	case *LeftJoin:
		for _, e := range n.Exprs {
			addExprVars(out, e)
		}
	case *TopN:
		addSortVars(out, n.Conditions)
	case *Order:
		addSortVars(out, n.Conditions)
	case *PropFunc:
		for _, t := range n.Subject {
			addTermVar(out, t)
		}
		for _, t := range n.Object {
			addTermVar(out, t)
		}
	case *Distinct, *Reduced, *List, *Slice, *Label,
		*Join, *Union, *Minus, *SemiJoin, *AntiJoin, *Lateral,
		*Sequence, *Disjunction, *Ext:
	default:
		panic(Unhandled(n))
	}
}

func addVarExprs(out ir.VarSet, assignments []VarExpr) {
	for _, a := range assignments {
		out.Add(a.Var)
		addExprVars(out, a.Expr)
	}
}

func addSortVars(out ir.VarSet, conds []SortCondition) {
	for _, c := range conds {
		addExprVars(out, c.Expr)
	}
}
