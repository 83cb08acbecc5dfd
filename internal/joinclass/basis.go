package joinclass

import (
	"fmt"

	"github.com/roach88/linjoin/internal/algebra"
)

// Basis labels what a subtree is built from.
type Basis int

const (
	// BasisTable: built entirely from pre-materialized relations.
	BasisTable Basis = iota
	// BasisPattern: produces solutions incrementally from graph matching.
	BasisPattern
	// BasisPropFunc: a property function invocation.
	BasisPropFunc
)

func (b Basis) String() string {
	switch b {
	case BasisTable:
		return "table"
	case BasisPattern:
		return "pattern"
	case BasisPropFunc:
		return "propfunc"
	default:
		return fmt.Sprintf("basis(%d)", int(b))
	}
}

// MarshalText encodes the basis by name.
func (b Basis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// BasisOf classifies n. Unary operators inherit their child's basis.
// Binary and n-ary operators are Table unless some child is Pattern; a
// PropFunc child counts as Table there.
func BasisOf(n algebra.Node) Basis {
	switch x := n.(type) {
	case nil:
		panic(algebra.Unhandled(n))
	case *algebra.Table:
		return BasisTable
	case *algebra.PropFunc:
		return BasisPropFunc
	case *algebra.Ext:
		if x.Effective == nil {
			return BasisPattern
		}
		return BasisOf(x.Effective)
	}

	switch n.Kind().Arity() {
	case algebra.ArityLeaf:
		return BasisPattern
	case algebra.ArityUnary:
		return BasisOf(algebra.Children(n)[0])
	case algebra.ArityBinary, algebra.ArityNary:
		for _, child := range algebra.Children(n) {
			if BasisOf(child) == BasisPattern {
				return BasisPattern
			}
		}
		return BasisTable
	default:
		panic(algebra.Unhandled(n))
	}
}
