// Package joinclass decides whether a binary join may be evaluated as a
// streaming substitution join (a sequence) instead of a materializing
// relational join.
//
// The decision is a soundness gate. A wrong "yes" silently changes query
// results; a wrong "no" only costs performance. Every rule here therefore
// errs toward rejection and none tries to find every safe case.
//
// DECISION ORDER:
//
// IsLinear(left, right) runs these rules and stops at the first rejection:
//
//  1. negation     minus, semi-join or anti-join anywhere in either
//     original subtree
//  2. (resolve)    strip distinct, reduced, project, list, graph, service
//     and delegating extensions from both sides
//  3. modifier     resolved right side is extend, assign, group, slice,
//     top, order or lateral
//  4. table-table  both resolved sides have Table basis
//  5. scope rules  variable-scope checks on the resolved sides:
//     filter-only  right filter-only vars meet left fixed or optional
//     optional     right optional vars meet left fixed or optional
//     filter-scope right filter vars meet left fixed
//     assign-scope right assign vars meet left fixed
//
// The right side is the one considered for substitution push-down.
//
// PURITY:
//
// A Classifier holds only its analyzer and an optional Tracer. With a pure
// analyzer every call is a pure function of the two trees, so one
// Classifier may be shared by any number of goroutines.
//
// DEFECTS:
//
// An operator outside the algebra vocabulary, or an analyzer result that
// breaks the scope contract, is an upstream bug. IsLinear and Explain
// panic with an assertion failure; Classify recovers it into an error.
// Neither guesses a default verdict.
package joinclass
