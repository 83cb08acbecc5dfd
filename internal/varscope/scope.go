package varscope

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

// Scope is the variable classification of one subtree.
//
// The sets are shared with caches; treat them as read-only.
type Scope struct {
	Fixed      ir.VarSet // bound in every solution
	Opt        ir.VarSet // bound in some solutions
	Filter     ir.VarSet // referenced by a filter condition
	FilterOnly ir.VarSet // referenced by a filter but not bound beneath it
	Assign     ir.VarSet // referenced by a BIND/assign expression
}

// Analyzer computes the Scope of a subtree. Implementations must be
// deterministic and safe for concurrent use.
type Analyzer interface {
	Analyze(n algebra.Node) Scope
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(n algebra.Node) Scope

// Analyze calls f(n).
func (f AnalyzerFunc) Analyze(n algebra.Node) Scope { return f(n) }

// Empty returns a scope with every set allocated and empty.
func Empty() Scope {
	return Scope{
		Fixed:      ir.NewVarSet(),
		Opt:        ir.NewVarSet(),
		Filter:     ir.NewVarSet(),
		FilterOnly: ir.NewVarSet(),
		Assign:     ir.NewVarSet(),
	}
}

// Bound returns Fixed ∪ Opt.
func (s Scope) Bound() ir.VarSet {
	return s.Fixed.Union(s.Opt)
}

// Validate reports a contract violation as an assertion failure: a nil
// set, or a filter-only variable that is not also filter-referenced.
func (s Scope) Validate() error {
	for _, f := range []struct {
		name string
		set  ir.VarSet
	}{
		{"fixed", s.Fixed},
		{"optional", s.Opt},
		{"filter", s.Filter},
		{"filter-only", s.FilterOnly},
		{"assign", s.Assign},
	} {
		if f.set == nil {
			return errors.AssertionFailedf("variable scope: %s set is missing", errors.Safe(f.name))
		}
	}
	if !s.FilterOnly.SubsetOf(s.Filter) {
		return errors.AssertionFailedf("variable scope: filter-only vars %s not in filter set %s",
			s.FilterOnly.Minus(s.Filter), s.Filter)
	}
	return nil
}

// String renders the scope one set per line, variables sorted.
func (s Scope) String() string {
	var sb strings.Builder
	sb.WriteString("fixed: " + s.Fixed.String() + "\n")
	sb.WriteString("opt: " + s.Opt.String() + "\n")
	sb.WriteString("filter: " + s.Filter.String() + "\n")
	sb.WriteString("filter-only: " + s.FilterOnly.String() + "\n")
	sb.WriteString("assign: " + s.Assign.String())
	return sb.String()
}

// restrict keeps only the variables in vars, in every set.
func (s Scope) restrict(vars ir.VarSet) Scope {
	return Scope{
		Fixed:      s.Fixed.Intersect(vars),
		Opt:        s.Opt.Intersect(vars),
		Filter:     s.Filter.Intersect(vars),
		FilterOnly: s.FilterOnly.Intersect(vars),
		Assign:     s.Assign.Intersect(vars),
	}
}

// merge unions every set of a and b.
func merge(a, b Scope) Scope {
	return Scope{
		Fixed:      a.Fixed.Union(b.Fixed),
		Opt:        a.Opt.Union(b.Opt),
		Filter:     a.Filter.Union(b.Filter),
		FilterOnly: a.FilterOnly.Union(b.FilterOnly),
		Assign:     a.Assign.Union(b.Assign),
	}
}
