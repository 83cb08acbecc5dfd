package algebra

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/linjoin/internal/ir"
)

// ParseError reports malformed plan text.
type ParseError struct {
	Offset int    // byte offset into the input
	Msg    string // human-readable description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads exactly one operator tree.
func Parse(src string) (Node, error) {
	nodes, err := ParseAll(src)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, &ParseError{Offset: 0, Msg: fmt.Sprintf("expected 1 operator, found %d", len(nodes))}
	}
	return nodes[0], nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

// ParseAll reads every top-level operator tree in src.
func ParseAll(src string) ([]Node, error) {
	forms, err := readForms(src)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(forms))
	for _, f := range forms {
		n, err := buildNode(f)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ParseExpr reads one expression.
func ParseExpr(src string) (Expr, error) {
	forms, err := readForms(src)
	if err != nil {
		return nil, err
	}
	if len(forms) != 1 {
		return nil, &ParseError{Offset: 0, Msg: fmt.Sprintf("expected 1 expression, found %d", len(forms))}
	}
	return buildExpr(forms[0])
}

// ParseTerm reads one term: ?var, <iri>, "string", integer, true or false.
func ParseTerm(src string) (ir.Term, error) {
	forms, err := readForms(src)
	if err != nil {
		return nil, err
	}
	if len(forms) != 1 {
		return nil, &ParseError{Offset: 0, Msg: fmt.Sprintf("expected 1 term, found %d", len(forms))}
	}
	return buildTerm(forms[0])
}

// ---- lexer ----

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokLBracket
	tokRBracket
	tokVar
	tokIRI
	tokString
	tokInt
	tokSymbol
)

type token struct {
	kind tokenKind
	text string // decoded value (var name, IRI body, unquoted string, symbol)
	num  int64
	pos  int
}

type lexer struct {
	src string
	pos int
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '[' || c == ']' || c == '"' || unicode.IsSpace(rune(c))
}

func isVarChar(c byte) bool {
	return c == '_' || c == '-' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &ParseError{Offset: pos, Msg: fmt.Sprintf(format, args...)}
}

// next returns the next token; ok is false at end of input.
func (l *lexer) next() (tok token, ok bool, err error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{}, false, nil
	}
	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, true, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, true, nil
	case c == '[':
		l.pos++
		return token{kind: tokLBracket, pos: start}, true, nil
	case c == ']':
		l.pos++
		return token{kind: tokRBracket, pos: start}, true, nil
	case c == '?':
		l.pos++
		for l.pos < len(l.src) && isVarChar(l.src[l.pos]) {
			l.pos++
		}
		name := l.src[start+1 : l.pos]
		if name == "" {
			return token{}, false, l.errorf(start, "empty variable name")
		}
		return token{kind: tokVar, text: name, pos: start}, true, nil
	case c == '<':
		return l.lexAngle(start)
	case c == '"':
		return l.lexString(start)
	case (c >= '0' && c <= '9') || ((c == '-' || c == '+') && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9'):
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
		n, err := strconv.ParseInt(l.src[start:l.pos], 10, 64)
		if err != nil {
			return token{}, false, l.errorf(start, "bad integer %q", l.src[start:l.pos])
		}
		return token{kind: tokInt, num: n, text: l.src[start:l.pos], pos: start}, true, nil
	default:
		for l.pos < len(l.src) && !isDelimiter(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokSymbol, text: l.src[start:l.pos], pos: start}, true, nil
	}
}

// lexAngle distinguishes the comparison operators < and <= from <iri>.
func (l *lexer) lexAngle(start int) (token, bool, error) {
	l.pos++
	if l.pos >= len(l.src) || isDelimiter(l.src[l.pos]) {
		return token{kind: tokSymbol, text: "<", pos: start}, true, nil
	}
	if l.src[l.pos] == '=' && (l.pos+1 >= len(l.src) || isDelimiter(l.src[l.pos+1])) {
		l.pos++
		return token{kind: tokSymbol, text: "<=", pos: start}, true, nil
	}
	end := strings.IndexByte(l.src[l.pos:], '>')
	if end < 0 {
		return token{}, false, l.errorf(start, "unterminated IRI")
	}
	body := l.src[l.pos : l.pos+end]
	if strings.ContainsAny(body, " \t\r\n") {
		return token{}, false, l.errorf(start, "whitespace in IRI %q", body)
	}
	l.pos += end + 1
	return token{kind: tokIRI, text: body, pos: start}, true, nil
}

func (l *lexer) lexString(start int) (token, bool, error) {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '"':
			l.pos++
			s, err := strconv.Unquote(l.src[start:l.pos])
			if err != nil {
				return token{}, false, l.errorf(start, "bad string literal: %v", err)
			}
			return token{kind: tokString, text: s, pos: start}, true, nil
		}
		l.pos++
	}
	return token{}, false, l.errorf(start, "unterminated string")
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case unicode.IsSpace(rune(c)):
			l.pos++
		case c == ';' || c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// ---- s-expression reader ----

// sexp is either an atom (tok set, list nil) or a () / [] list.
type sexp struct {
	tok     token
	isList  bool
	bracket bool
	list    []sexp
	pos     int
}

func (s sexp) isSymbol(text string) bool {
	return !s.isList && s.tok.kind == tokSymbol && s.tok.text == text
}

func (s sexp) describe() string {
	if s.isList {
		if s.bracket {
			return "[...]"
		}
		if len(s.list) > 0 && !s.list[0].isList {
			return "(" + s.list[0].tok.text + " ...)"
		}
		return "(...)"
	}
	return fmt.Sprintf("%q", s.tok.text)
}

func readForms(src string) ([]sexp, error) {
	l := &lexer{src: src}
	var forms []sexp
	for {
		tok, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return forms, nil
		}
		form, err := readForm(l, tok)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

func readForm(l *lexer, tok token) (sexp, error) {
	switch tok.kind {
	case tokLParen, tokLBracket:
		closer := tokRParen
		if tok.kind == tokLBracket {
			closer = tokRBracket
		}
		s := sexp{isList: true, bracket: tok.kind == tokLBracket, pos: tok.pos}
		for {
			t, ok, err := l.next()
			if err != nil {
				return sexp{}, err
			}
			if !ok {
				return sexp{}, l.errorf(tok.pos, "unclosed list")
			}
			if t.kind == closer {
				return s, nil
			}
			if t.kind == tokRParen || t.kind == tokRBracket {
				return sexp{}, l.errorf(t.pos, "mismatched closing bracket")
			}
			child, err := readForm(l, t)
			if err != nil {
				return sexp{}, err
			}
			s.list = append(s.list, child)
		}
	case tokRParen, tokRBracket:
		return sexp{}, l.errorf(tok.pos, "unexpected closing bracket")
	default:
		return sexp{tok: tok, pos: tok.pos}, nil
	}
}

// ---- builders ----

func errAt(s sexp, format string, args ...any) error {
	return &ParseError{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}

func buildNode(s sexp) (Node, error) {
	if !s.isList || s.bracket || len(s.list) == 0 || s.list[0].isList || s.list[0].tok.kind != tokSymbol {
		return nil, errAt(s, "expected operator, found %s", s.describe())
	}
	tag := s.list[0].tok.text
	args := s.list[1:]

	switch tag {
	case "bgp":
		triples, err := buildTriples(args)
		if err != nil {
			return nil, err
		}
		return &BGP{Triples: triples}, nil
	case "triple":
		tr, err := buildTriple(s)
		if err != nil {
			return nil, err
		}
		return &BGP{Triples: []Triple{tr}}, nil
	case "quadpattern":
		if len(args) < 1 {
			return nil, errAt(s, "quadpattern needs a graph term")
		}
		g, err := buildTerm(args[0])
		if err != nil {
			return nil, err
		}
		triples, err := buildTriples(args[1:])
		if err != nil {
			return nil, err
		}
		return &QuadPattern{Graph: g, Triples: triples}, nil
	case "path":
		if len(args) != 3 || args[1].isList || args[1].tok.kind != tokString {
			return nil, errAt(s, "path expects (path subject \"path\" object)")
		}
		subj, err := buildTerm(args[0])
		if err != nil {
			return nil, err
		}
		obj, err := buildTerm(args[2])
		if err != nil {
			return nil, err
		}
		return &Path{Subject: subj, Path: args[1].tok.text, Object: obj}, nil
	case "table":
		return buildTable(s, args)
	case "distinct", "reduced", "list":
		sub, err := buildSingle(s, args)
		if err != nil {
			return nil, err
		}
		switch tag {
		case "distinct":
			return &Distinct{Sub: sub}, nil
		case "reduced":
			return &Reduced{Sub: sub}, nil
		default:
			return &List{Sub: sub}, nil
		}
	case "project":
		if len(args) != 2 {
			return nil, errAt(s, "project expects (project (vars) op)")
		}
		vars, err := buildVarList(args[0])
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		return &Project{Vars: vars, Sub: sub}, nil
	case "slice":
		if len(args) != 3 {
			return nil, errAt(s, "slice expects (slice start length op)")
		}
		start, err := buildBound(args[0])
		if err != nil {
			return nil, err
		}
		length, err := buildBound(args[1])
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[2])
		if err != nil {
			return nil, err
		}
		return &Slice{Start: start, Length: length, Sub: sub}, nil
	case "top":
		if len(args) != 2 || !args[0].isList || len(args[0].list) < 1 || args[0].list[0].tok.kind != tokInt {
			return nil, errAt(s, "top expects (top (N conditions...) op)")
		}
		conds, err := buildSortConditions(args[0].list[1:])
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		return &TopN{Limit: args[0].list[0].tok.num, Conditions: conds, Sub: sub}, nil
	case "order":
		if len(args) != 2 || !args[0].isList {
			return nil, errAt(s, "order expects (order (conditions...) op)")
		}
		conds, err := buildSortConditions(args[0].list)
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		return &Order{Conditions: conds, Sub: sub}, nil
	case "graph":
		if len(args) != 2 {
			return nil, errAt(s, "graph expects (graph name op)")
		}
		name, err := buildTerm(args[0])
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		return &Graph{Name: name, Sub: sub}, nil
	case "service":
		silent := len(args) > 0 && args[0].isSymbol("silent")
		if silent {
			args = args[1:]
		}
		if len(args) != 2 {
			return nil, errAt(s, "service expects (service [silent] endpoint op)")
		}
		endpoint, err := buildTerm(args[0])
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		return &Service{Endpoint: endpoint, Silent: silent, Sub: sub}, nil
	case "extend", "assign":
		if len(args) != 2 {
			return nil, errAt(s, "%s expects (%s ((?var expr)...) op)", tag, tag)
		}
		assignments, err := buildVarExprs(args[0])
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		if tag == "extend" {
			return &Extend{Assignments: assignments, Sub: sub}, nil
		}
		return &Assign{Assignments: assignments, Sub: sub}, nil
	case "group":
		return buildGroup(s, args)
	case "filter":
		if len(args) != 2 {
			return nil, errAt(s, "filter expects (filter expr op)")
		}
		exprs, err := buildExprList(args[0])
		if err != nil {
			return nil, err
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		return &Filter{Exprs: exprs, Sub: sub}, nil
	case "label":
		if len(args) != 2 || args[0].isList || args[0].tok.kind != tokString {
			return nil, errAt(s, "label expects (label \"text\" op)")
		}
		sub, err := buildNode(args[1])
		if err != nil {
			return nil, err
		}
		return &Label{Text: args[0].tok.text, Sub: sub}, nil
	case "propfunc":
		return buildPropFunc(s, args)
	case "join", "union", "minus", "semijoin", "antijoin", "lateral", "leftjoin":
		return buildBinary(s, tag, args)
	case "sequence", "disjunction":
		subs := make([]Node, 0, len(args))
		for _, a := range args {
			n, err := buildNode(a)
			if err != nil {
				return nil, err
			}
			subs = append(subs, n)
		}
		if tag == "sequence" {
			return &Sequence{Subs: subs}, nil
		}
		return &Disjunction{Subs: subs}, nil
	case "ext":
		if len(args) < 1 || len(args) > 2 || args[0].isList || args[0].tok.kind != tokSymbol {
			return nil, errAt(s, "ext expects (ext name [op])")
		}
		ext := &Ext{Name: args[0].tok.text}
		if len(args) == 2 {
			eff, err := buildNode(args[1])
			if err != nil {
				return nil, err
			}
			ext.Effective = eff
		}
		return ext, nil
	default:
		return nil, errAt(s, "unknown operator %q", tag)
	}
}

func buildSingle(s sexp, args []sexp) (Node, error) {
	if len(args) != 1 {
		return nil, errAt(s, "%s expects exactly one sub-operator", s.list[0].tok.text)
	}
	return buildNode(args[0])
}

func buildBinary(s sexp, tag string, args []sexp) (Node, error) {
	maxArgs := 2
	if tag == "leftjoin" {
		maxArgs = 3
	}
	if len(args) < 2 || len(args) > maxArgs {
		return nil, errAt(s, "%s expects two sub-operators", tag)
	}
	left, err := buildNode(args[0])
	if err != nil {
		return nil, err
	}
	right, err := buildNode(args[1])
	if err != nil {
		return nil, err
	}
	switch tag {
	case "join":
		return &Join{Left: left, Right: right}, nil
	case "union":
		return &Union{Left: left, Right: right}, nil
	case "minus":
		return &Minus{Left: left, Right: right}, nil
	case "semijoin":
		return &SemiJoin{Left: left, Right: right}, nil
	case "antijoin":
		return &AntiJoin{Left: left, Right: right}, nil
	case "lateral":
		return &Lateral{Left: left, Right: right}, nil
	default:
		lj := &LeftJoin{Left: left, Right: right}
		if len(args) == 3 {
			exprs, err := buildExprList(args[2])
			if err != nil {
				return nil, err
			}
			lj.Exprs = exprs
		}
		return lj, nil
	}
}

func buildTriples(args []sexp) ([]Triple, error) {
	triples := make([]Triple, 0, len(args))
	for _, a := range args {
		tr, err := buildTriple(a)
		if err != nil {
			return nil, err
		}
		triples = append(triples, tr)
	}
	return triples, nil
}

func buildTriple(s sexp) (Triple, error) {
	if !s.isList || len(s.list) != 4 || !s.list[0].isSymbol("triple") {
		return Triple{}, errAt(s, "expected (triple s p o), found %s", s.describe())
	}
	var terms [3]ir.Term
	for i := range terms {
		t, err := buildTerm(s.list[i+1])
		if err != nil {
			return Triple{}, err
		}
		terms[i] = t
	}
	return Triple{S: terms[0], P: terms[1], O: terms[2]}, nil
}

func buildTable(s sexp, args []sexp) (Node, error) {
	if len(args) == 1 && args[0].isSymbol("unit") {
		return UnitTable(), nil
	}
	if len(args) == 1 && args[0].isSymbol("empty") {
		return EmptyTable(), nil
	}
	if len(args) == 0 || !args[0].isList || len(args[0].list) == 0 || !args[0].list[0].isSymbol("vars") {
		return nil, errAt(s, "table expects unit, empty or (vars ...) rows")
	}
	t := &Table{}
	declared := ir.NewVarSet()
	for _, v := range args[0].list[1:] {
		if v.isList || v.tok.kind != tokVar {
			return nil, errAt(v, "table vars must be variables")
		}
		t.Vars = append(t.Vars, ir.NewVar(v.tok.text))
		declared.Add(ir.NewVar(v.tok.text))
	}
	for _, r := range args[1:] {
		if !r.isList || len(r.list) == 0 || !r.list[0].isSymbol("row") {
			return nil, errAt(r, "expected (row ...), found %s", r.describe())
		}
		row := ir.Binding{}
		for _, cell := range r.list[1:] {
			if !cell.isList || !cell.bracket || len(cell.list) != 2 || cell.list[0].tok.kind != tokVar {
				return nil, errAt(cell, "expected [?var value] cell")
			}
			v := ir.NewVar(cell.list[0].tok.text)
			if !declared.Has(v) {
				return nil, errAt(cell, "row binds undeclared variable %s", v)
			}
			val, err := buildTerm(cell.list[1])
			if err != nil {
				return nil, err
			}
			if ir.IsVar(val) {
				return nil, errAt(cell, "table cells must be concrete terms")
			}
			row[v] = val
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func buildGroup(s sexp, args []sexp) (Node, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, errAt(s, "group expects (group (keys) [(aggregates)] op)")
	}
	keys, err := buildVarList(args[0])
	if err != nil {
		return nil, err
	}
	g := &Group{Keys: keys}
	if len(args) == 3 {
		if !args[1].isList {
			return nil, errAt(args[1], "expected aggregate list")
		}
		for _, a := range args[1].list {
			if !a.isList || len(a.list) != 2 || a.list[0].tok.kind != tokVar || !a.list[1].isList || len(a.list[1].list) == 0 {
				return nil, errAt(a, "expected (?var (func [expr]))")
			}
			call := a.list[1].list
			if call[0].isList || call[0].tok.kind != tokSymbol || len(call) > 2 {
				return nil, errAt(a, "expected aggregate (func [expr])")
			}
			agg := Aggregate{Var: ir.NewVar(a.list[0].tok.text), Func: call[0].tok.text}
			if len(call) == 2 {
				e, err := buildExpr(call[1])
				if err != nil {
					return nil, err
				}
				agg.Expr = e
			}
			g.Aggregates = append(g.Aggregates, agg)
		}
	}
	sub, err := buildNode(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	g.Sub = sub
	return g, nil
}

func buildPropFunc(s sexp, args []sexp) (Node, error) {
	if len(args) != 3 && len(args) != 4 {
		return nil, errAt(s, "propfunc expects (propfunc property (args) (args) [op])")
	}
	prop, err := buildTerm(args[0])
	if err != nil {
		return nil, err
	}
	subj, err := buildTermList(args[1])
	if err != nil {
		return nil, err
	}
	obj, err := buildTermList(args[2])
	if err != nil {
		return nil, err
	}
	pf := &PropFunc{Property: prop, Subject: subj, Object: obj}
	if len(args) == 4 {
		sub, err := buildNode(args[3])
		if err != nil {
			return nil, err
		}
		pf.Sub = sub
	}
	return pf, nil
}

func buildVarList(s sexp) ([]ir.Var, error) {
	if !s.isList {
		return nil, errAt(s, "expected variable list")
	}
	vars := make([]ir.Var, 0, len(s.list))
	for _, v := range s.list {
		if v.isList || v.tok.kind != tokVar {
			return nil, errAt(v, "expected variable, found %s", v.describe())
		}
		vars = append(vars, ir.NewVar(v.tok.text))
	}
	return vars, nil
}

func buildTermList(s sexp) ([]ir.Term, error) {
	if !s.isList {
		return nil, errAt(s, "expected term list")
	}
	terms := make([]ir.Term, 0, len(s.list))
	for _, t := range s.list {
		term, err := buildTerm(t)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func buildBound(s sexp) (int64, error) {
	if s.isSymbol("_") {
		return -1, nil
	}
	if s.isList || s.tok.kind != tokInt || s.tok.num < 0 {
		return 0, errAt(s, "expected non-negative integer or _")
	}
	return s.tok.num, nil
}

func buildSortConditions(items []sexp) ([]SortCondition, error) {
	conds := make([]SortCondition, 0, len(items))
	for _, it := range items {
		if it.isList && len(it.list) == 2 && (it.list[0].isSymbol("desc") || it.list[0].isSymbol("asc")) {
			e, err := buildExpr(it.list[1])
			if err != nil {
				return nil, err
			}
			conds = append(conds, SortCondition{Expr: e, Desc: it.list[0].isSymbol("desc")})
			continue
		}
		e, err := buildExpr(it)
		if err != nil {
			return nil, err
		}
		conds = append(conds, SortCondition{Expr: e})
	}
	return conds, nil
}

func buildVarExprs(s sexp) ([]VarExpr, error) {
	if !s.isList {
		return nil, errAt(s, "expected ((?var expr) ...)")
	}
	out := make([]VarExpr, 0, len(s.list))
	for _, item := range s.list {
		if !item.isList || len(item.list) != 2 || item.list[0].isList || item.list[0].tok.kind != tokVar {
			return nil, errAt(item, "expected (?var expr)")
		}
		e, err := buildExpr(item.list[1])
		if err != nil {
			return nil, err
		}
		out = append(out, VarExpr{Var: ir.NewVar(item.list[0].tok.text), Expr: e})
	}
	return out, nil
}

func buildExprList(s sexp) ([]Expr, error) {
	if s.isList && len(s.list) > 0 && s.list[0].isSymbol("exprlist") {
		exprs := make([]Expr, 0, len(s.list)-1)
		for _, item := range s.list[1:] {
			e, err := buildExpr(item)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return exprs, nil
	}
	e, err := buildExpr(s)
	if err != nil {
		return nil, err
	}
	return []Expr{e}, nil
}

func buildExpr(s sexp) (Expr, error) {
	if !s.isList {
		t, err := buildTerm(s)
		if err != nil {
			return nil, err
		}
		if v, ok := t.(ir.Var); ok {
			return &ExprVar{Var: v}, nil
		}
		return &ExprConst{Value: t}, nil
	}
	if s.bracket || len(s.list) == 0 || s.list[0].isList || s.list[0].tok.kind != tokSymbol {
		return nil, errAt(s, "expected (op args...), found %s", s.describe())
	}
	op := s.list[0].tok.text
	if op == "exists" || op == "notexists" {
		if len(s.list) != 2 {
			return nil, errAt(s, "%s expects one pattern", op)
		}
		pattern, err := buildNode(s.list[1])
		if err != nil {
			return nil, err
		}
		return &ExprExists{Not: op == "notexists", Pattern: pattern}, nil
	}
	call := &ExprCall{Op: op}
	for _, a := range s.list[1:] {
		e, err := buildExpr(a)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, e)
	}
	return call, nil
}

func buildTerm(s sexp) (ir.Term, error) {
	if s.isList {
		return nil, errAt(s, "expected term, found %s", s.describe())
	}
	switch s.tok.kind {
	case tokVar:
		return ir.NewVar(s.tok.text), nil
	case tokIRI:
		return ir.NewIRI(s.tok.text), nil
	case tokString:
		return ir.NewString(s.tok.text), nil
	case tokInt:
		return ir.Int(s.tok.num), nil
	case tokSymbol:
		switch s.tok.text {
		case "true":
			return ir.Bool(true), nil
		case "false":
			return ir.Bool(false), nil
		}
	}
	return nil, errAt(s, "expected term, found %s", s.describe())
}
