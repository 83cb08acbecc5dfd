// Package eval is a reference evaluator for algebra plans over a quad
// source.
//
// It exists to check rewrites, not to be fast. Every operator is
// evaluated eagerly into a slice of solutions, joins are nested loops and
// EXISTS re-evaluates its pattern per row. Results are deterministic for
// a deterministic Source.
//
// TWO JOIN STRATEGIES:
//
// Join evaluates both sides independently and merges compatible pairs.
// Sequence evaluates Subs[0], then for each solution μ evaluates
// Substitute(Subs[1], μ) and merges μ into every result, and so on. The
// rewriter may replace the first by the second only when the two agree;
// EvalJoin, EvalSequence and SameSolutions let callers check that on real
// data.
//
// SUBSTITUTION:
//
// Substitute replaces each variable bound in μ with its value wherever
// the variable is in scope: pattern positions, graph names, filter and
// assignment expressions, table rows. Project and Group restrict μ to
// their visible variables before descending. A substituted variable is no
// longer bound by the subtree; the merge with μ restores it.
//
// EXPRESSION ERRORS:
//
// A type error or unbound variable inside an expression is not a Go
// error. It makes a filter false, leaves a BIND unbound and is skipped by
// aggregates. Only context cancellation, source failures, unsupported
// operators and the solution limit abort evaluation.
//
// UNSUPPORTED:
//
// Path, Service, PropFunc, Lateral and opaque extensions have no local
// meaning and fail with an EvalError whose code is UNSUPPORTED.
package eval
