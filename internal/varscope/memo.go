package varscope

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/linjoin/internal/algebra"
)

// DefaultMemoSize bounds the number of subtrees a Memo remembers.
const DefaultMemoSize = 4096

// Memo caches another Analyzer's results keyed by node identity.
//
// Identity, not structure: two equal but distinct subtrees are analyzed
// separately. Trees are immutable, so a pointer never changes meaning
// while the Memo is alive. Create one Memo per rewrite pass.
type Memo struct {
	inner  Analyzer
	cache  *lru.Cache[algebra.Node, Scope]
	hits   atomic.Int64
	misses atomic.Int64
}

var _ Analyzer = (*Memo)(nil)

// NewMemo wraps inner with an LRU cache holding up to size entries.
func NewMemo(inner Analyzer, size int) (*Memo, error) {
	cache, err := lru.New[algebra.Node, Scope](size)
	if err != nil {
		return nil, err
	}
	return &Memo{inner: inner, cache: cache}, nil
}

// Analyze returns the cached scope of n, computing it on a miss.
func (m *Memo) Analyze(n algebra.Node) Scope {
	if s, ok := m.cache.Get(n); ok {
		m.hits.Add(1)
		return s
	}
	m.misses.Add(1)
	s := m.inner.Analyze(n)
	m.cache.Add(n, s)
	return s
}

// Stats returns cache hits and misses so far.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// Len returns the number of cached entries.
func (m *Memo) Len() int {
	return m.cache.Len()
}
