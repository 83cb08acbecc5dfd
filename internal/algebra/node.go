package algebra

import (
	"github.com/roach88/linjoin/internal/ir"
)

// Node is an operator in a query plan.
//
// This is a sealed interface - only types in this package implement it.
type Node interface {
	// Kind returns the operator tag.
	Kind() Kind
	node() // Marker method - seals interface to this package
}

// Kind is the operator tag of a Node.
type Kind int

const (
	KindBGP Kind = iota
	KindQuadPattern
	KindPath
	KindTable

	KindDistinct
	KindReduced
	KindProject
	KindList
	KindSlice
	KindTopN
	KindOrder
	KindGraph
	KindService
	KindExtend
	KindAssign
	KindGroup
	KindFilter
	KindLabel
	KindPropFunc

	KindJoin
	KindLeftJoin
	KindUnion
	KindMinus
	KindSemiJoin
	KindAntiJoin
	KindLateral

	KindSequence
	KindDisjunction

	KindExt
)

var kindNames = [...]string{
	KindBGP:         "bgp",
	KindQuadPattern: "quadpattern",
	KindPath:        "path",
	KindTable:       "table",
	KindDistinct:    "distinct",
	KindReduced:     "reduced",
	KindProject:     "project",
	KindList:        "list",
	KindSlice:       "slice",
	KindTopN:        "top",
	KindOrder:       "order",
	KindGraph:       "graph",
	KindService:     "service",
	KindExtend:      "extend",
	KindAssign:      "assign",
	KindGroup:       "group",
	KindFilter:      "filter",
	KindLabel:       "label",
	KindPropFunc:    "propfunc",
	KindJoin:        "join",
	KindLeftJoin:    "leftjoin",
	KindUnion:       "union",
	KindMinus:       "minus",
	KindSemiJoin:    "semijoin",
	KindAntiJoin:    "antijoin",
	KindLateral:     "lateral",
	KindSequence:    "sequence",
	KindDisjunction: "disjunction",
	KindExt:         "ext",
}

// String returns the SSE tag of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Arity classifies kinds by the shape of their children.
type Arity int

const (
	ArityLeaf Arity = iota
	ArityUnary
	ArityBinary
	ArityNary
	ArityExtension
)

// Arity returns the structural arity of the kind.
// PropFunc is unary even when its sub-node is absent (leaf-like form).
func (k Kind) Arity() Arity {
	switch {
	case k <= KindTable:
		return ArityLeaf
	case k <= KindPropFunc:
		return ArityUnary
	case k <= KindLateral:
		return ArityBinary
	case k <= KindDisjunction:
		return ArityNary
	default:
		return ArityExtension
	}
}

// Triple is a triple pattern. Any position may hold an ir.Var.
type Triple struct {
	S, P, O ir.Term
}

// BGP is a basic graph pattern: a conjunction of triple patterns.
type BGP struct {
	Triples []Triple
}

// QuadPattern is a set of triple patterns matched in one named graph.
type QuadPattern struct {
	Graph   ir.Term
	Triples []Triple
}

// Path is a property-path pattern. The path expression itself is opaque.
type Path struct {
	Subject ir.Term
	Path    string
	Object  ir.Term
}

// Table is a pre-materialized binding relation (e.g. a VALUES clause).
// A row may leave any of Vars undefined.
type Table struct {
	Vars []ir.Var
	Rows []ir.Binding
}

// UnitTable returns the join identity: no variables, one empty row.
func UnitTable() *Table {
	return &Table{Rows: []ir.Binding{{}}}
}

// EmptyTable returns the table with no rows.
func EmptyTable() *Table {
	return &Table{}
}

// IsUnit reports whether t is the join identity.
func (t *Table) IsUnit() bool {
	return len(t.Vars) == 0 && len(t.Rows) == 1 && len(t.Rows[0]) == 0
}

type Distinct struct{ Sub Node }

type Reduced struct{ Sub Node }

// Project restricts solutions to Vars.
type Project struct {
	Vars []ir.Var
	Sub  Node
}

type List struct{ Sub Node }

// Slice is OFFSET/LIMIT. -1 means unset.
type Slice struct {
	Start, Length int64
	Sub           Node
}

// SortCondition is one ORDER BY key.
type SortCondition struct {
	Expr Expr
	Desc bool
}

// TopN is ORDER BY + LIMIT fused.
type TopN struct {
	Limit      int64
	Conditions []SortCondition
	Sub        Node
}

type Order struct {
	Conditions []SortCondition
	Sub        Node
}

// Graph evaluates Sub against the named graph Name (IRI or variable).
type Graph struct {
	Name ir.Term
	Sub  Node
}

// Service delegates Sub to a remote endpoint.
type Service struct {
	Endpoint ir.Term
	Silent   bool
	Sub      Node
}

// VarExpr binds Var to the value of Expr.
type VarExpr struct {
	Var  ir.Var
	Expr Expr
}

// Extend is BIND: adds new variables computed from each solution.
type Extend struct {
	Assignments []VarExpr
	Sub         Node
}

// Assign is the non-standard LET form of Extend.
type Assign struct {
	Assignments []VarExpr
	Sub         Node
}

// Aggregate computes Var := Func(Expr) per group. Expr is nil for count(*).
type Aggregate struct {
	Var  ir.Var
	Func string
	Expr Expr
}

// Group is GROUP BY Keys with Aggregates.
type Group struct {
	Keys       []ir.Var
	Aggregates []Aggregate
	Sub        Node
}

// Filter keeps solutions for which every expression is true.
type Filter struct {
	Exprs []Expr
	Sub   Node
}

// Label is a comment-carrying no-op wrapper.
type Label struct {
	Text string
	Sub  Node
}

// PropFunc invokes an externally defined property function.
// Sub is nil in the leaf-like form.
type PropFunc struct {
	Property ir.Term
	Subject  []ir.Term
	Object   []ir.Term
	Sub      Node
}

type Join struct{ Left, Right Node }

// LeftJoin is OPTIONAL; Exprs is the optional filter (nil = none).
type LeftJoin struct {
	Left, Right Node
	Exprs       []Expr
}

type Union struct{ Left, Right Node }

type Minus struct{ Left, Right Node }

type SemiJoin struct{ Left, Right Node }

type AntiJoin struct{ Left, Right Node }

// Lateral evaluates Right once per Left solution with its own contract.
type Lateral struct{ Left, Right Node }

// Sequence is the streaming substitution join: each solution of Subs[i] is
// pushed into Subs[i+1].
type Sequence struct{ Subs []Node }

type Disjunction struct{ Subs []Node }

// Ext is an extension operator. Effective is the node it behaves as, or
// nil when the extension is opaque.
type Ext struct {
	Name      string
	Effective Node
}

func (*BGP) Kind() Kind         { return KindBGP }
func (*QuadPattern) Kind() Kind { return KindQuadPattern }
func (*Path) Kind() Kind        { return KindPath }
func (*Table) Kind() Kind       { return KindTable }
func (*Distinct) Kind() Kind    { return KindDistinct }
func (*Reduced) Kind() Kind     { return KindReduced }
func (*Project) Kind() Kind     { return KindProject }
func (*List) Kind() Kind        { return KindList }
func (*Slice) Kind() Kind       { return KindSlice }
func (*TopN) Kind() Kind        { return KindTopN }
func (*Order) Kind() Kind       { return KindOrder }
func (*Graph) Kind() Kind       { return KindGraph }
func (*Service) Kind() Kind     { return KindService }
func (*Extend) Kind() Kind      { return KindExtend }
func (*Assign) Kind() Kind      { return KindAssign }
func (*Group) Kind() Kind       { return KindGroup }
func (*Filter) Kind() Kind      { return KindFilter }
func (*Label) Kind() Kind       { return KindLabel }
func (*PropFunc) Kind() Kind    { return KindPropFunc }
func (*Join) Kind() Kind        { return KindJoin }
func (*LeftJoin) Kind() Kind    { return KindLeftJoin }
func (*Union) Kind() Kind       { return KindUnion }
func (*Minus) Kind() Kind       { return KindMinus }
func (*SemiJoin) Kind() Kind    { return KindSemiJoin }
func (*AntiJoin) Kind() Kind    { return KindAntiJoin }
func (*Lateral) Kind() Kind     { return KindLateral }
func (*Sequence) Kind() Kind    { return KindSequence }
func (*Disjunction) Kind() Kind { return KindDisjunction }
func (*Ext) Kind() Kind         { return KindExt }

func (*BGP) node()         {}
func (*QuadPattern) node() {}
func (*Path) node()        {}
func (*Table) node()       {}
func (*Distinct) node()    {}
func (*Reduced) node()     {}
func (*Project) node()     {}
func (*List) node()        {}
func (*Slice) node()       {}
func (*TopN) node()        {}
func (*Order) node()       {}
func (*Graph) node()       {}
func (*Service) node()     {}
func (*Extend) node()      {}
func (*Assign) node()      {}
func (*Group) node()       {}
func (*Filter) node()      {}
func (*Label) node()       {}
func (*PropFunc) node()    {}
func (*Join) node()        {}
func (*LeftJoin) node()    {}
func (*Union) node()       {}
func (*Minus) node()       {}
func (*SemiJoin) node()    {}
func (*AntiJoin) node()    {}
func (*Lateral) node()     {}
func (*Sequence) node()    {}
func (*Disjunction) node() {}
func (*Ext) node()         {}
