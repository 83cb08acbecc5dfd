package joinclass

import (
	"github.com/roach88/linjoin/internal/algebra"
)

// Resolve strips wrappers that neither introduce nor hide bindings in a
// way that matters to substitution: distinct, reduced, project, list,
// graph and service, plus extensions with an effective operator. An
// opaque extension is returned as is.
func Resolve(n algebra.Node) algebra.Node {
	for {
		switch x := n.(type) {
		case *algebra.Ext:
			if x.Effective == nil {
				return n
			}
			n = x.Effective
		case *algebra.Distinct:
			n = x.Sub
		case *algebra.Reduced:
			n = x.Sub
		case *algebra.Project:
			n = x.Sub
		case *algebra.List:
			n = x.Sub
		case *algebra.Graph:
			n = x.Sub
		case *algebra.Service:
			n = x.Sub
		default:
			return n
		}
	}
}

// HasUnsafeNegation reports whether n contains a minus, semi-join or
// anti-join anywhere, without resolving wrappers. An opaque extension is
// not descended into.
func HasUnsafeNegation(n algebra.Node) bool {
	_, found := findNegation(n)
	return found
}

// findNegation returns the kind of the first negation operator in
// pre-order.
func findNegation(n algebra.Node) (algebra.Kind, bool) {
	var kind algebra.Kind
	found := algebra.Any(n, func(n algebra.Node) bool {
		switch n.(type) {
		case *algebra.Minus, *algebra.SemiJoin, *algebra.AntiJoin:
			kind = n.Kind()
			return true
		}
		return false
	})
	return kind, found
}

// isModifier reports whether the resolved right side is an operator whose
// semantics need the whole right relation.
func isModifier(n algebra.Node) bool {
	switch n.(type) {
	case *algebra.Extend, *algebra.Assign, *algebra.Group,
		*algebra.Slice, *algebra.TopN, *algebra.Order, *algebra.Lateral:
		return true
	}
	return false
}
