package algebra

import (
	"github.com/cockroachdb/errors"
)

// Children returns the direct sub-nodes of n in positional order (left
// before right). An Ext yields its effective node; an opaque Ext and the
// leaf-like PropFunc have none.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *BGP, *QuadPattern, *Path, *Table:
		return nil
	case *Distinct:
		return []Node{n.Sub}
	case *Reduced:
		return []Node{n.Sub}
	case *Project:
		return []Node{n.Sub}
	case *List:
		return []Node{n.Sub}
	case *Slice:
		return []Node{n.Sub}
	case *TopN:
		return []Node{n.Sub}
	case *Order:
		return []Node{n.Sub}
	case *Graph:
		return []Node{n.Sub}
	case *Service:
		return []Node{n.Sub}
	case *Extend:
		return []Node{n.Sub}
	case *Assign:
		return []Node{n.Sub}
	case *Group:
		return []Node{n.Sub}
	case *Filter:
		return []Node{n.Sub}
	case *Label:
		return []Node{n.Sub}
	case *PropFunc:
		if n.Sub == nil {
			return nil
		}
		return []Node{n.Sub}
	case *Join:
		return []Node{n.Left, n.Right}
	case *LeftJoin:
		return []Node{n.Left, n.Right}
	case *Union:
		return []Node{n.Left, n.Right}
	case *Minus:
		return []Node{n.Left, n.Right}
	case *SemiJoin:
		return []Node{n.Left, n.Right}
	case *AntiJoin:
		return []Node{n.Left, n.Right}
	case *Lateral:
		return []Node{n.Left, n.Right}
	case *Sequence:
		return n.Subs
	case *Disjunction:
		return n.Subs
	case *Ext:
		if n.Effective == nil {
			return nil
		}
		return []Node{n.Effective}
	default:
		panic(Unhandled(n))
	}
}

// Walk visits n and its descendants in pre-order. fn returns false to stop
// the walk; Walk then returns false as well.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range Children(n) {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Any reports whether pred holds for n or any descendant.
func Any(n Node, pred func(Node) bool) bool {
	found := false
	Walk(n, func(n Node) bool {
		if pred(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

// WithChildren returns a shallow copy of n with its children replaced.
// len(kids) must equal len(Children(n)).
func WithChildren(n Node, kids []Node) Node {
	if want := len(Children(n)); want != len(kids) {
		panic(errors.AssertionFailedf("WithChildren(%s): got %d children, want %d", n.Kind(), len(kids), want))
	}
	switch n := n.(type) {
	case *BGP, *QuadPattern, *Path, *Table:
		return n
	case *Distinct:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Reduced:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Project:
		c := *n
		c.Sub = kids[0]
		return &c
	case *List:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Slice:
		c := *n
		c.Sub = kids[0]
		return &c
	case *TopN:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Order:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Graph:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Service:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Extend:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Assign:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Group:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Filter:
		c := *n
		c.Sub = kids[0]
		return &c
	case *Label:
		c := *n
		c.Sub = kids[0]
		return &c
	case *PropFunc:
		c := *n
		if len(kids) == 1 {
			c.Sub = kids[0]
		}
		return &c
	case *Join:
		return &Join{Left: kids[0], Right: kids[1]}
	case *LeftJoin:
		return &LeftJoin{Left: kids[0], Right: kids[1], Exprs: n.Exprs}
	case *Union:
		return &Union{Left: kids[0], Right: kids[1]}
	case *Minus:
		return &Minus{Left: kids[0], Right: kids[1]}
	case *SemiJoin:
		return &SemiJoin{Left: kids[0], Right: kids[1]}
	case *AntiJoin:
		return &AntiJoin{Left: kids[0], Right: kids[1]}
	case *Lateral:
		return &Lateral{Left: kids[0], Right: kids[1]}
	case *Sequence:
		return &Sequence{Subs: append([]Node(nil), kids...)}
	case *Disjunction:
		return &Disjunction{Subs: append([]Node(nil), kids...)}
	case *Ext:
		c := *n
		if len(kids) == 1 {
			c.Effective = kids[0]
		}
		return &c
	default:
		panic(Unhandled(n))
	}
}
