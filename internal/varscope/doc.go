// Package varscope computes variable-scope classifications of algebra
// subtrees: which variables a subtree always binds, sometimes binds,
// references from filters, references only from filters, and feeds into
// BIND/assign expressions.
//
// The join classifier consumes these sets as an oracle. Analysis is a pure
// function of tree structure, so two structurally identical trees always
// produce equal scopes.
//
// ARCHITECTURE:
//
// Analyzer is the consumed contract. Finder is the default implementation,
// a bottom-up recursion with one rule per operator. Memo wraps any
// Analyzer with a bounded cache keyed by node identity; the rewriter
// creates one Memo per pass and drops it afterwards.
//
// RAW OUTPUT:
//
// Finder returns raw, unnormalized sets. Fixed and Opt may overlap (a join
// of a branch that fixes ?x with one that leaves it optional). Consumers
// subtract Fixed themselves.
//
// FILTER-ONLY:
//
// FilterOnly is computed locally at each filter site: the variables the
// condition mentions that the filter's own input never binds. Joining that
// subtree with a sibling that binds the variable does not remove it from
// FilterOnly, because the filter cannot see the sibling's bindings.
//
// CONTRACT:
//
// Validate checks the invariants the classifier relies on. A violation is
// an upstream defect reported as an assertion failure.
package varscope
