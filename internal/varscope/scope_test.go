package varscope

import (
	"sync"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

func TestScopeDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/scope", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "scope":
			n, err := algebra.Parse(d.Input)
			if err != nil {
				d.Fatalf(t, "%v", err)
			}
			s := Finder{}.Analyze(n)
			require.NoError(t, s.Validate())
			return s.String()
		default:
			d.Fatalf(t, "unsupported command: %s", d.Cmd)
			return ""
		}
	})
}

func TestFinderIsDeterministic(t *testing.T) {
	src := `(leftjoin (bgp (triple ?s <http://ex/p> ?o)) (filter (> ?z 1) (bgp (triple ?s <http://ex/q> ?x))))`
	a := Finder{}.Analyze(algebra.MustParse(src))
	b := Finder{}.Analyze(algebra.MustParse(src))
	assert.Equal(t, a.String(), b.String())
}

func TestFinderUnknownNodePanics(t *testing.T) {
	var n algebra.Node
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.IsAssertionFailure(err))
	}()
	Finder{}.Analyze(n)
}

func TestValidate(t *testing.T) {
	s := Empty()
	require.NoError(t, s.Validate())

	s.FilterOnly = ir.NewVarSet("a")
	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))

	missing := Empty()
	missing.Assign = nil
	err = missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assign set is missing")
}

func TestFinderDoesNotAliasChildSets(t *testing.T) {
	bgp := algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?o))`)
	m, err := NewMemo(Finder{}, 8)
	require.NoError(t, err)

	before := m.Analyze(bgp)
	_ = Finder{}.Analyze(&algebra.Graph{Name: ir.Var("g"), Sub: bgp})
	after := m.Analyze(bgp)
	assert.Equal(t, before.Fixed, after.Fixed)
	assert.Equal(t, ir.NewVarSet("s", "o"), after.Fixed)
}

func TestMemoCachesByIdentity(t *testing.T) {
	calls := 0
	counting := AnalyzerFunc(func(n algebra.Node) Scope {
		calls++
		return Finder{}.Analyze(n)
	})
	m, err := NewMemo(counting, 16)
	require.NoError(t, err)

	n := algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?o))`)
	same := algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?o))`)

	m.Analyze(n)
	m.Analyze(n)
	assert.Equal(t, 1, calls)

	m.Analyze(same)
	assert.Equal(t, 2, calls, "structurally equal but distinct nodes are separate entries")

	hits, misses := m.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
	assert.Equal(t, 2, m.Len())
}

func TestMemoEvicts(t *testing.T) {
	m, err := NewMemo(Finder{}, 2)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		m.Analyze(&algebra.BGP{})
	}
	assert.Equal(t, 2, m.Len())
}

func TestMemoRejectsBadSize(t *testing.T) {
	_, err := NewMemo(Finder{}, 0)
	assert.Error(t, err)
}

func TestMemoConcurrent(t *testing.T) {
	m, err := NewMemo(Finder{}, DefaultMemoSize)
	require.NoError(t, err)
	n := algebra.MustParse(`(union (bgp (triple ?s <http://ex/p> ?o)) (bgp (triple ?s <http://ex/q> ?x)))`)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := m.Analyze(n)
				assert.Equal(t, ir.NewVarSet("s"), s.Fixed)
			}
		}()
	}
	wg.Wait()
}
