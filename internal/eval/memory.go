package eval

import (
	"context"
	"slices"

	"github.com/roach88/linjoin/internal/ir"
)

// MemorySource is a Source over a fixed slice of quads. Duplicates are
// dropped; insertion order is kept.
type MemorySource struct {
	quads []ir.Quad
}

// NewMemorySource creates a source over quads.
func NewMemorySource(quads []ir.Quad) *MemorySource {
	seen := make(map[string]struct{}, len(quads))
	m := &MemorySource{}
	for _, q := range quads {
		key := ir.CanonicalQuad(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		m.quads = append(m.quads, q)
	}
	return m
}

// Match implements Source.
func (m *MemorySource) Match(ctx context.Context, pattern ir.Quad) ([]ir.Quad, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []ir.Quad{}
	for _, q := range m.quads {
		if matchGraph(pattern.G, q.G) &&
			matchTerm(pattern.S, q.S) &&
			matchTerm(pattern.P, q.P) &&
			matchTerm(pattern.O, q.O) {
			out = append(out, q)
		}
	}
	return out, nil
}

// Graphs implements Source. Names are sorted.
func (m *MemorySource) Graphs(ctx context.Context) ([]ir.IRI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []ir.IRI{}
	for _, q := range m.quads {
		if g, ok := q.G.(ir.IRI); ok && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Len returns the number of distinct quads.
func (m *MemorySource) Len() int {
	return len(m.quads)
}

func matchGraph(pattern, g ir.Term) bool {
	switch pattern.(type) {
	case nil:
		return g == nil
	case ir.Var:
		return g != nil
	default:
		return ir.TermsEqual(pattern, g)
	}
}

func matchTerm(pattern, t ir.Term) bool {
	if !ir.IsConcrete(pattern) {
		return true
	}
	return ir.TermsEqual(pattern, t)
}
