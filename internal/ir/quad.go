package ir

import (
	"slices"
	"strings"
)

// Quad is one stored statement. G is nil for the default graph.
type Quad struct {
	G Term
	S Term
	P Term
	O Term
}

// CanonicalQuad renders q as "<s> <p> <o> <g>" with "_" for the default
// graph.
func CanonicalQuad(q Quad) string {
	g := "_"
	if q.G != nil {
		g = CanonicalTerm(q.G)
	}
	return CanonicalTerm(q.S) + " " + CanonicalTerm(q.P) + " " + CanonicalTerm(q.O) + " " + g
}

// DatasetHash computes the content-addressed identity of a set of quads.
// Order and duplicates do not affect the result.
func DatasetHash(quads []Quad) string {
	lines := make([]string, len(quads))
	for i, q := range quads {
		lines[i] = CanonicalQuad(q)
	}
	slices.Sort(lines)
	lines = slices.Compact(lines)
	return hashWithDomain(DomainDataset, []byte(strings.Join(lines, "\n")))
}
