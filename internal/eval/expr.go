package eval

import (
	"context"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

// test reports whether every expression is true for row.
func (e *Evaluator) test(ctx context.Context, exprs []algebra.Expr, row ir.Binding, graph ir.Term) (bool, error) {
	for _, x := range exprs {
		ok, err := e.truth(ctx, x, row, graph)
		if err != nil {
			if isExprError(err) {
				return false, nil
			}
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// truth evaluates x to its effective boolean value.
func (e *Evaluator) truth(ctx context.Context, x algebra.Expr, row ir.Binding, graph ir.Term) (bool, error) {
	val, err := e.evalExpr(ctx, x, row, graph)
	if err != nil {
		return false, err
	}
	return effectiveBool(val)
}

func effectiveBool(t ir.Term) (bool, error) {
	switch t := t.(type) {
	case ir.Bool:
		return bool(t), nil
	case ir.Int:
		return t != 0, nil
	case ir.String:
		return t != "", nil
	default:
		return false, exprErrorf("no boolean value for %s", ir.CanonicalTerm(t))
	}
}

func (e *Evaluator) evalExpr(ctx context.Context, x algebra.Expr, row ir.Binding, graph ir.Term) (ir.Term, error) {
	switch x := x.(type) {
	case *algebra.ExprVar:
		return lookup(row, x.Var)
	case *algebra.ExprConst:
		if v, ok := x.Value.(ir.Var); ok {
			return lookup(row, v)
		}
		return x.Value, nil
	case *algebra.ExprCall:
		return e.call(ctx, x, row, graph)
	case *algebra.ExprExists:
		rows, err := e.eval(ctx, Substitute(x.Pattern, row), graph)
		if err != nil {
			return nil, err
		}
		found := false
		for _, r := range rows {
			if row.Compatible(r) {
				found = true
				break
			}
		}
		return ir.Bool(found != x.Not), nil
	default:
		panic(algebra.Unhandled(x))
	}
}

func lookup(row ir.Binding, v ir.Var) (ir.Term, error) {
	if val, ok := row[v]; ok {
		return val, nil
	}
	return nil, exprErrorf("unbound variable %s", v)
}

func (e *Evaluator) call(ctx context.Context, x *algebra.ExprCall, row ir.Binding, graph ir.Term) (ir.Term, error) {
	switch x.Op {
	case "bound":
		if len(x.Args) != 1 {
			return nil, exprErrorf("bound takes one argument")
		}
		switch arg := x.Args[0].(type) {
		case *algebra.ExprVar:
			_, ok := row[arg.Var]
			return ir.Bool(ok), nil
		case *algebra.ExprConst:
			// A substituted variable is bound by construction.
			if v, ok := arg.Value.(ir.Var); ok {
				_, bound := row[v]
				return ir.Bool(bound), nil
			}
			return ir.Bool(true), nil
		default:
			return nil, exprErrorf("bound needs a variable")
		}
	case "&&", "||":
		return e.connective(ctx, x, row, graph)
	case "!":
		if len(x.Args) != 1 {
			return nil, exprErrorf("! takes one argument")
		}
		b, err := e.truth(ctx, x.Args[0], row, graph)
		if err != nil {
			return nil, err
		}
		return ir.Bool(!b), nil
	}

	args := make([]ir.Term, len(x.Args))
	for i, a := range x.Args {
		val, err := e.evalExpr(ctx, a, row, graph)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	switch x.Op {
	case "=", "!=":
		if len(args) != 2 {
			return nil, exprErrorf("%s takes two arguments", x.Op)
		}
		eq := ir.TermsEqual(args[0], args[1])
		return ir.Bool(eq == (x.Op == "=")), nil
	case "<", ">", "<=", ">=":
		if len(args) != 2 {
			return nil, exprErrorf("%s takes two arguments", x.Op)
		}
		c, err := compareOrdered(args[0], args[1])
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case "<":
			return ir.Bool(c < 0), nil
		case ">":
			return ir.Bool(c > 0), nil
		case "<=":
			return ir.Bool(c <= 0), nil
		default:
			return ir.Bool(c >= 0), nil
		}
	case "+", "-", "*":
		return arithmetic(x.Op, args)
	default:
		return nil, exprErrorf("unknown function %s", x.Op)
	}
}

// connective implements && and || with error absorption: false && error
// is false, true || error is true.
func (e *Evaluator) connective(ctx context.Context, x *algebra.ExprCall, row ir.Binding, graph ir.Term) (ir.Term, error) {
	if len(x.Args) != 2 {
		return nil, exprErrorf("%s takes two arguments", x.Op)
	}
	absorbing := x.Op == "||"
	var firstErr error
	for _, a := range x.Args {
		b, err := e.truth(ctx, a, row, graph)
		if err != nil {
			if !isExprError(err) {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if b == absorbing {
			return ir.Bool(absorbing), nil
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return ir.Bool(!absorbing), nil
}

func compareOrdered(a, b ir.Term) (int, error) {
	switch a.(type) {
	case ir.Int:
		if _, ok := b.(ir.Int); ok {
			return ir.CompareTerms(a, b), nil
		}
	case ir.String:
		if _, ok := b.(ir.String); ok {
			return ir.CompareTerms(a, b), nil
		}
	}
	return 0, exprErrorf("cannot order %s and %s", ir.CanonicalTerm(a), ir.CanonicalTerm(b))
}

func arithmetic(op string, args []ir.Term) (ir.Term, error) {
	ints := make([]ir.Int, len(args))
	for i, a := range args {
		n, ok := a.(ir.Int)
		if !ok {
			return nil, exprErrorf("%s needs integers, got %s", op, ir.CanonicalTerm(a))
		}
		ints[i] = n
	}
	switch {
	case op == "-" && len(ints) == 1:
		return -ints[0], nil
	case len(ints) != 2:
		return nil, exprErrorf("%s takes two arguments", op)
	}
	switch op {
	case "+":
		return ints[0] + ints[1], nil
	case "-":
		return ints[0] - ints[1], nil
	default:
		return ints[0] * ints[1], nil
	}
}
