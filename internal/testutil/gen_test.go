package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	a := NewGenerator(42, DefaultGenConfig())
	b := NewGenerator(42, DefaultGenConfig())
	for range 50 {
		assert.Equal(t, algebra.Format(a.Plan()), algebra.Format(b.Plan()))
	}
	assert.Equal(t, a.Dataset(20), b.Dataset(20))
}

func TestGeneratorSeedsDiffer(t *testing.T) {
	a := NewGenerator(1, DefaultGenConfig())
	b := NewGenerator(2, DefaultGenConfig())
	same := 0
	for range 20 {
		if algebra.Format(a.Plan()) == algebra.Format(b.Plan()) {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestGeneratedPlansRoundTrip(t *testing.T) {
	g := NewGenerator(7, DefaultGenConfig())
	for range 100 {
		n := g.Plan()
		again, err := algebra.Parse(algebra.Format(n))
		require.NoError(t, err)
		assert.Equal(t, algebra.Format(n), algebra.Format(again))
	}
}

func TestGeneratorRespectsKinds(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Kinds = []algebra.Kind{algebra.KindJoin}
	allowed := []algebra.Kind{algebra.KindJoin, algebra.KindBGP, algebra.KindTable}

	g := NewGenerator(3, cfg)
	for range 100 {
		algebra.Walk(g.Plan(), func(n algebra.Node) bool {
			assert.True(t, slices.Contains(allowed, n.Kind()), "unexpected %s", n.Kind())
			return true
		})
	}
}

func TestGeneratorRespectsDepth(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.MaxDepth = 0
	g := NewGenerator(5, cfg)
	for range 50 {
		n := g.Plan()
		assert.Contains(t, []algebra.Kind{algebra.KindBGP, algebra.KindTable}, n.Kind())
	}
}

func TestGeneratedVariablesComeFromPool(t *testing.T) {
	cfg := DefaultGenConfig()
	pool := ir.NewVarSet(cfg.Vars...)
	g := NewGenerator(9, cfg)
	for range 100 {
		assert.True(t, algebra.MentionedVars(g.Plan()).SubsetOf(pool))
	}
}

func TestDatasetUsesVocabulary(t *testing.T) {
	cfg := DefaultGenConfig()
	quads := NewGenerator(11, cfg).Dataset(30)
	require.Len(t, quads, 30)
	for _, q := range quads {
		assert.Nil(t, q.G)
		assert.Contains(t, cfg.Subjects, q.S)
		assert.Contains(t, cfg.Predicates, q.P)
		assert.Contains(t, cfg.Objects, q.O)
	}
}
