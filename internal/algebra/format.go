package algebra

import (
	"strconv"
	"strings"

	"github.com/roach88/linjoin/internal/ir"
)

// Format renders n as a single-line s-expression.
func Format(n Node) string {
	var sb strings.Builder
	formatNode(&sb, n, -1)
	return sb.String()
}

// FormatIndent renders n over multiple lines, one operator per line with
// children indented by two spaces.
func FormatIndent(n Node) string {
	var sb strings.Builder
	formatNode(&sb, n, 0)
	return sb.String()
}

// FormatExpr renders an expression.
func FormatExpr(e Expr) string {
	var sb strings.Builder
	formatExpr(&sb, e)
	return sb.String()
}

// formatNode writes n. depth < 0 means single-line output.
func formatNode(sb *strings.Builder, n Node, depth int) {
	head, kids, tail := parts(n)
	sb.WriteByte('(')
	sb.WriteString(head)
	for _, k := range kids {
		if depth < 0 {
			sb.WriteByte(' ')
			formatNode(sb, k, -1)
			continue
		}
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("  ", depth+1))
		formatNode(sb, k, depth+1)
	}
	if tail != "" {
		sb.WriteByte(' ')
		sb.WriteString(tail)
	}
	sb.WriteByte(')')
}

// parts splits an operator into its header (tag and leading arguments),
// child nodes, and trailing arguments.
func parts(n Node) (head string, kids []Node, tail string) {
	tag := n.Kind().String()
	switch n := n.(type) {
	case *BGP:
		return joinHead(tag, triplesText(n.Triples)...), nil, ""
	case *QuadPattern:
		return joinHead(tag, append([]string{termText(n.Graph)}, triplesText(n.Triples)...)...), nil, ""
	case *Path:
		return joinHead(tag, termText(n.Subject), strconv.Quote(n.Path), termText(n.Object)), nil, ""
	case *Table:
		return tableText(n), nil, ""
	case *Distinct:
		return tag, []Node{n.Sub}, ""
	case *Reduced:
		return tag, []Node{n.Sub}, ""
	case *List:
		return tag, []Node{n.Sub}, ""
	case *Project:
		return joinHead(tag, varList(n.Vars)), []Node{n.Sub}, ""
	case *Slice:
		return joinHead(tag, sliceBound(n.Start), sliceBound(n.Length)), []Node{n.Sub}, ""
	case *TopN:
		conds := append([]string{strconv.FormatInt(n.Limit, 10)}, sortText(n.Conditions)...)
		return joinHead(tag, "("+strings.Join(conds, " ")+")"), []Node{n.Sub}, ""
	case *Order:
		return joinHead(tag, "("+strings.Join(sortText(n.Conditions), " ")+")"), []Node{n.Sub}, ""
	case *Graph:
		return joinHead(tag, termText(n.Name)), []Node{n.Sub}, ""
	case *Service:
		if n.Silent {
			return joinHead(tag, "silent", termText(n.Endpoint)), []Node{n.Sub}, ""
		}
		return joinHead(tag, termText(n.Endpoint)), []Node{n.Sub}, ""
	case *Extend:
		return joinHead(tag, varExprsText(n.Assignments)), []Node{n.Sub}, ""
	case *Assign:
		return joinHead(tag, varExprsText(n.Assignments)), []Node{n.Sub}, ""
	case *Group:
		h := joinHead(tag, varList(n.Keys))
		if len(n.Aggregates) > 0 {
			h = joinHead(h, aggregatesText(n.Aggregates))
		}
		return h, []Node{n.Sub}, ""
	case *Filter:
		return joinHead(tag, exprListText(n.Exprs)), []Node{n.Sub}, ""
	case *Label:
		return joinHead(tag, strconv.Quote(n.Text)), []Node{n.Sub}, ""
	case *PropFunc:
		h := joinHead(tag, termText(n.Property), termList(n.Subject), termList(n.Object))
		if n.Sub == nil {
			return h, nil, ""
		}
		return h, []Node{n.Sub}, ""
	case *Join:
		return tag, []Node{n.Left, n.Right}, ""
	case *LeftJoin:
		if len(n.Exprs) == 0 {
			return tag, []Node{n.Left, n.Right}, ""
		}
		return tag, []Node{n.Left, n.Right}, exprListText(n.Exprs)
	case *Union:
		return tag, []Node{n.Left, n.Right}, ""
	case *Minus:
		return tag, []Node{n.Left, n.Right}, ""
	case *SemiJoin:
		return tag, []Node{n.Left, n.Right}, ""
	case *AntiJoin:
		return tag, []Node{n.Left, n.Right}, ""
	case *Lateral:
		return tag, []Node{n.Left, n.Right}, ""
	case *Sequence:
		return tag, n.Subs, ""
	case *Disjunction:
		return tag, n.Subs, ""
	case *Ext:
		if n.Effective == nil {
			return joinHead(tag, n.Name), nil, ""
		}
		return joinHead(tag, n.Name), []Node{n.Effective}, ""
	default:
		panic(Unhandled(n))
	}
}

func joinHead(tag string, args ...string) string {
	if len(args) == 0 {
		return tag
	}
	return tag + " " + strings.Join(args, " ")
}

func termText(t ir.Term) string {
	if t == nil {
		return "_"
	}
	return ir.CanonicalTerm(t)
}

func triplesText(triples []Triple) []string {
	out := make([]string, len(triples))
	for i, tr := range triples {
		out[i] = "(triple " + termText(tr.S) + " " + termText(tr.P) + " " + termText(tr.O) + ")"
	}
	return out
}

func varList(vars []ir.Var) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func termList(terms []ir.Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = termText(t)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func tableText(t *Table) string {
	if t.IsUnit() {
		return "table unit"
	}
	if len(t.Vars) == 0 && len(t.Rows) == 0 {
		return "table empty"
	}
	var sb strings.Builder
	sb.WriteString("table ")
	sb.WriteString("(vars")
	for _, v := range t.Vars {
		sb.WriteByte(' ')
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	for _, row := range t.Rows {
		sb.WriteString(" (row")
		for _, v := range t.Vars {
			val, ok := row[v]
			if !ok {
				continue
			}
			sb.WriteString(" [")
			sb.WriteString(v.String())
			sb.WriteByte(' ')
			sb.WriteString(termText(val))
			sb.WriteByte(']')
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

func sliceBound(n int64) string {
	if n < 0 {
		return "_"
	}
	return strconv.FormatInt(n, 10)
}

func sortText(conds []SortCondition) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		if c.Desc {
			out[i] = "(desc " + FormatExpr(c.Expr) + ")"
		} else {
			out[i] = FormatExpr(c.Expr)
		}
	}
	return out
}

func varExprsText(assignments []VarExpr) string {
	parts := make([]string, len(assignments))
	for i, a := range assignments {
		parts[i] = "(" + a.Var.String() + " " + FormatExpr(a.Expr) + ")"
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func aggregatesText(aggs []Aggregate) string {
	parts := make([]string, len(aggs))
	for i, a := range aggs {
		call := "(" + a.Func
		if a.Expr != nil {
			call += " " + FormatExpr(a.Expr)
		}
		call += ")"
		parts[i] = "(" + a.Var.String() + " " + call + ")"
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func exprListText(exprs []Expr) string {
	if len(exprs) == 0 {
		return "(exprlist)"
	}
	if len(exprs) == 1 {
		return FormatExpr(exprs[0])
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = FormatExpr(e)
	}
	return "(exprlist " + strings.Join(parts, " ") + ")"
}

func formatExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *ExprVar:
		sb.WriteString(e.Var.String())
	case *ExprConst:
		sb.WriteString(termText(e.Value))
	case *ExprCall:
		sb.WriteByte('(')
		sb.WriteString(e.Op)
		for _, a := range e.Args {
			sb.WriteByte(' ')
			formatExpr(sb, a)
		}
		sb.WriteByte(')')
	case *ExprExists:
		if e.Not {
			sb.WriteString("(notexists ")
		} else {
			sb.WriteString("(exists ")
		}
		formatNode(sb, e.Pattern, -1)
		sb.WriteByte(')')
	default:
		panic(Unhandled(e))
	}
}
