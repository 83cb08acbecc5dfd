package joinclass_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/eval"
	"github.com/roach88/linjoin/internal/ir"
	"github.com/roach88/linjoin/internal/joinclass"
	"github.com/roach88/linjoin/internal/testutil"
	"github.com/roach88/linjoin/internal/varscope"
)

// TestSoundnessDifferential checks on random plans and datasets that every
// accepted join gives the same solutions under substitution as under a
// relational join.
//
// Right sides where a subtree leaves a variable unbound that the side as
// a whole fixes are skipped: normalization removes fixed variables from
// the optional set, and TestOptionalFixedOverlapDiverges pins down that
// such plans can still differ.
func TestSoundnessDifferential(t *testing.T) {
	const (
		datasets = 20
		pairs    = 40
	)
	ctx := context.Background()
	classifier := joinclass.New(nil)

	var accepted, rejected, skipped int
	for seed := range uint64(datasets) {
		gen := testutil.NewGenerator(seed, testutil.DefaultGenConfig())
		ev := eval.New(eval.NewMemorySource(gen.Dataset(12)), eval.WithMaxSolutions(20_000))

		for range pairs {
			left, right := gen.Pair()
			if !classifier.IsLinear(left, right) {
				rejected++
				continue
			}
			if optionalFixedOverlap(right) {
				skipped++
				continue
			}
			cmp, err := ev.Compare(ctx, left, right)
			if eval.IsLimitError(err) {
				skipped++
				continue
			}
			require.NoError(t, err)
			accepted++

			if !cmp.Same {
				t.Fatalf("accepted join is not linear (seed %d)\nleft:  %s\nright: %s\njoin:\n%s\nsequence:\n%s",
					seed, algebra.Format(left), algebra.Format(right),
					strings.Join(eval.Canonical(cmp.Join), "\n"),
					strings.Join(eval.Canonical(cmp.Sequence), "\n"))
			}
		}
	}
	t.Logf("accepted=%d rejected=%d skipped=%d", accepted, rejected, skipped)
	assert.Positive(t, accepted)
	assert.Positive(t, rejected)
}

// optionalFixedOverlap reports whether some subtree of n binds a variable
// in only some of its solutions while n as a whole fixes it.
func optionalFixedOverlap(n algebra.Node) bool {
	var f varscope.Finder
	partial := ir.NewVarSet()
	algebra.Walk(n, func(n algebra.Node) bool {
		switch x := n.(type) {
		case *algebra.LeftJoin:
			l, r := f.Analyze(x.Left), f.Analyze(x.Right)
			partial.AddAll(r.Bound().Minus(l.Fixed))
		case *algebra.Union:
			l, r := f.Analyze(x.Left), f.Analyze(x.Right)
			partial.AddAll(l.Bound().Union(r.Bound()).Minus(l.Fixed.Intersect(r.Fixed)))
		case *algebra.Table:
			partial.AddAll(f.Analyze(x).Opt)
		}
		return true
	})
	return partial.Intersects(f.Analyze(n).Fixed)
}

// TestRejectedJoinsCanDiffer shows the filter-only and optional rules
// guard real divergences on concrete data.
func TestRejectedJoinsCanDiffer(t *testing.T) {
	src := eval.NewMemorySource([]ir.Quad{
		{S: ir.IRI("http://ex/alice"), P: ir.IRI("http://ex/age"), O: ir.Int(30)},
		{S: ir.IRI("http://ex/bob"), P: ir.IRI("http://ex/age"), O: ir.Int(25)},
		{S: ir.IRI("http://ex/alice"), P: ir.IRI("http://ex/knows"), O: ir.IRI("http://ex/bob")},
	})
	left := algebra.MustParse(`(bgp (triple ?s <http://ex/age> ?a))`)

	cases := map[string]struct {
		right string
		rule  joinclass.Rule
	}{
		"filter-only": {
			right: `(filter (> ?a 28) (bgp (triple ?s <http://ex/knows> ?o)))`,
			rule:  joinclass.RuleFilterOnly,
		},
		"optional": {
			right: `(leftjoin (bgp (triple ?s <http://ex/knows> ?o)) (bgp (triple ?o <http://ex/age> ?a)))`,
			rule:  joinclass.RuleOptional,
		},
	}
	ctx := context.Background()
	ev := eval.New(src)
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			right := algebra.MustParse(tc.right)

			dec := joinclass.New(nil).Explain(left, right)
			assert.False(t, dec.Linear)
			assert.Equal(t, tc.rule, dec.Rule)

			cmp, err := ev.Compare(ctx, left, right)
			require.NoError(t, err)
			assert.Empty(t, cmp.Join)
			assert.Len(t, cmp.Sequence, 1)
			assert.False(t, cmp.Same)
		})
	}
}

// TestOptionalFixedOverlapDiverges records the boundary of the optional
// rule: ?a is optional under the leftjoin but fixed by the sibling table,
// so it is normalized away and the join is accepted, yet the leftjoin
// observes the substituted value.
func TestOptionalFixedOverlapDiverges(t *testing.T) {
	src := eval.NewMemorySource([]ir.Quad{
		{S: ir.IRI("http://ex/x"), P: ir.IRI("http://ex/val"), O: ir.Int(1)},
	})
	left := algebra.MustParse(`(bgp (triple ?x <http://ex/val> ?a))`)
	right := algebra.MustParse(`
(join
  (leftjoin (table (vars ?k) (row [?k 0])) (table (vars ?k ?a) (row [?k 0] [?a 2])))
  (table (vars ?a) (row [?a 1])))`)

	assert.True(t, joinclass.IsLinear(left, right))
	assert.True(t, optionalFixedOverlap(right))

	cmp, err := eval.New(src).Compare(context.Background(), left, right)
	require.NoError(t, err)
	assert.Empty(t, cmp.Join)
	assert.Equal(t, []string{"(?a 1) (?k 0) (?x <http://ex/x>)"}, eval.Canonical(cmp.Sequence))
}
