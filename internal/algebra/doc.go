// Package algebra defines the query-plan operator tree consumed by the join
// classifier and the plan rewriter.
//
// The tree is a closed, tagged union of operators over four arities plus an
// extension wrapper:
//
//	leaf      BGP, QuadPattern, Path, Table
//	unary     Distinct, Reduced, Project, List, Slice, TopN, Order, Graph,
//	          Service, Extend, Assign, Group, Filter, Label, PropFunc
//	binary    Join, LeftJoin, Union, Minus, SemiJoin, AntiJoin, Lateral
//	n-ary     Sequence, Disjunction
//	extension Ext (delegates to an effective node, or is opaque)
//
// SEALED INTERFACES:
//
// Node and Expr are sealed using the marker method pattern. Only types in
// this package implement them, so every type switch over Node can be
// exhaustive. A default branch in such a switch is reached only when an
// upstream compiler hands us something outside the vocabulary; that is a
// defect and is reported with Unhandled, never silently defaulted.
//
// IMMUTABILITY:
//
// Trees are built once and never mutated. WithChildren returns a shallow
// copy; the rewriter builds new parents around untouched subtrees.
//
// TEXT FORM:
//
// Format and Parse use an SSE-style s-expression syntax:
//
//	(join
//	  (bgp (triple ?s <http://ex/p> ?o))
//	  (leftjoin
//	    (bgp (triple ?s <http://ex/q> ?x))
//	    (table (vars ?x) (row [?x 1]))))
//
// Format(Parse(s)) is stable: formatting a parsed tree and parsing it again
// yields a structurally identical tree with the same Fingerprint.
package algebra
