// Package rewrite turns materializing joins into streaming sequences
// wherever the join classifier allows it.
//
// A pass walks the plan bottom-up. Children are rewritten first; each
// Join is then classified against its rewritten children. An accepted
// join becomes a Sequence, and a Sequence on the left is flattened into
// it, so a chain of accepted joins becomes one n-ary sequence. Rejected
// joins are kept as they are.
//
// Every pass gets a time-sortable pass ID and its own variable-scope
// memo. Decisions are counted in Prometheus metrics registered on an
// injected registerer, and logged through an injected slog.Logger.
//
// The input tree is never modified; untouched subtrees are shared between
// the input and the output.
package rewrite
