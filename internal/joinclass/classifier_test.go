package joinclass

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
	"github.com/roach88/linjoin/internal/varscope"
)

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "resolve":
				return algebra.Format(Resolve(parseOne(t, d)))

			case "basis":
				return BasisOf(parseOne(t, d)).String()

			case "negation":
				return strconv.FormatBool(HasUnsafeNegation(parseOne(t, d)))

			case "classify":
				nodes, err := algebra.ParseAll(d.Input)
				if err != nil {
					d.Fatalf(t, "%v", err)
				}
				if len(nodes) != 2 {
					d.Fatalf(t, "classify wants 2 trees, got %d", len(nodes))
				}
				dec, err := New(varscope.Finder{}).Classify(nodes[0], nodes[1])
				if err != nil {
					d.Fatalf(t, "%v", err)
				}
				out := dec.String()
				if d.HasArg("sets") && dec.Sets != nil {
					out += "\n" + dec.Sets.String()
				}
				return out

			default:
				d.Fatalf(t, "unsupported command: %s", d.Cmd)
				return ""
			}
		})
	})
}

func parseOne(t *testing.T, d *datadriven.TestData) algebra.Node {
	n, err := algebra.Parse(d.Input)
	if err != nil {
		d.Fatalf(t, "%v", err)
	}
	return n
}

// scopeStub answers fixed scopes keyed by the formatted tree.
func scopeStub(scopes map[string]varscope.Scope) varscope.Analyzer {
	return varscope.AnalyzerFunc(func(n algebra.Node) varscope.Scope {
		if s, ok := scopes[algebra.Format(n)]; ok {
			return s
		}
		return varscope.Empty()
	})
}

func TestFilterScopeRuleUsesAnalyzer(t *testing.T) {
	left := algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?a))`)
	right := algebra.MustParse(`(bgp (triple ?s <http://ex/q> ?o))`)

	rightScope := varscope.Empty()
	rightScope.Fixed = ir.NewVarSet("s", "o")
	rightScope.Filter = ir.NewVarSet("a")
	leftScope := varscope.Empty()
	leftScope.Fixed = ir.NewVarSet("s", "a")

	c := New(scopeStub(map[string]varscope.Scope{
		algebra.Format(left):  leftScope,
		algebra.Format(right): rightScope,
	}))
	d := c.Explain(left, right)
	assert.False(t, d.Linear)
	assert.Equal(t, RuleFilterScope, d.Rule)
	assert.Equal(t, "?a", d.Steps[len(d.Steps)-1].Detail)
}

func TestNormalizationFixedDominates(t *testing.T) {
	left := algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?a))`)
	right := algebra.MustParse(`(bgp (triple ?s <http://ex/q> ?o))`)

	// Raw overlap: ?a is both fixed and optional/filter/assign on the right.
	rightScope := varscope.Empty()
	rightScope.Fixed = ir.NewVarSet("s", "a")
	rightScope.Opt = ir.NewVarSet("a")
	rightScope.Filter = ir.NewVarSet("a")
	rightScope.Assign = ir.NewVarSet("a")
	leftScope := varscope.Empty()
	leftScope.Fixed = ir.NewVarSet("s", "a")
	leftScope.Opt = ir.NewVarSet("s")

	c := New(scopeStub(map[string]varscope.Scope{
		algebra.Format(left):  leftScope,
		algebra.Format(right): rightScope,
	}))
	d := c.Explain(left, right)
	assert.True(t, d.Linear, d.String())
	require.NotNil(t, d.Sets)
	assert.Equal(t, ir.NewVarSet(), d.Sets.LeftOpt)
	assert.Equal(t, ir.NewVarSet(), d.Sets.RightOpt)
	assert.Equal(t, ir.NewVarSet(), d.Sets.RightFilter)
	assert.Equal(t, ir.NewVarSet(), d.Sets.RightAssign)
}

func TestClassifyReportsContractViolation(t *testing.T) {
	bad := varscope.Empty()
	bad.FilterOnly = ir.NewVarSet("x")
	c := New(varscope.AnalyzerFunc(func(algebra.Node) varscope.Scope { return bad }))

	left := algebra.MustParse(`(bgp (triple ?s ?p ?o))`)
	right := algebra.MustParse(`(bgp (triple ?s ?p ?x))`)

	_, err := c.Classify(left, right)
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))
	assert.Contains(t, err.Error(), "left side")

	assert.Panics(t, func() { c.IsLinear(left, right) })
}

func TestClassifyReportsNilNode(t *testing.T) {
	_, err := New(nil).Classify(nil, algebra.MustParse(`(bgp)`))
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))
}

func TestCatchDefectConvertsRuntimeErrors(t *testing.T) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = CatchDefect(r)
			}
		}()
		var s []int
		_ = s[3]
		return nil
	}()
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))

	plain := CatchDefect(errors.New("boom"))
	assert.True(t, errors.IsAssertionFailure(plain))

	assert.Panics(t, func() { _ = CatchDefect("not an error") })
}

func TestPackageLevelIsLinear(t *testing.T) {
	left := algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?x))`)
	right := algebra.MustParse(`(bgp (triple ?s <http://ex/q> ?o))`)
	assert.True(t, IsLinear(left, right))
	assert.False(t, IsLinear(left, algebra.MustParse(`(minus (bgp) (bgp))`)))
}

func TestIsLinearDeterministicAcrossCopies(t *testing.T) {
	src := [2]string{
		`(bgp (triple ?x <http://ex/p> ?y))`,
		`(leftjoin (bgp (triple ?s <http://ex/q> ?o)) (bgp (triple ?o <http://ex/r> ?x)))`,
	}
	c := New(nil)
	first := c.Explain(algebra.MustParse(src[0]), algebra.MustParse(src[1]))
	for i := 0; i < 5; i++ {
		again := c.Explain(algebra.MustParse(src[0]), algebra.MustParse(src[1]))
		assert.Equal(t, first, again)
	}
}

func TestClassifierDoesNotMutateTrees(t *testing.T) {
	left := algebra.MustParse(`(distinct (bgp (triple ?s <http://ex/p> ?x)))`)
	right := algebra.MustParse(`(filter (> ?a 1) (project (?s ?a) (bgp (triple ?s <http://ex/q> ?a))))`)
	before := [2]string{algebra.Format(left), algebra.Format(right)}

	New(nil).IsLinear(left, right)

	assert.Equal(t, before, [2]string{algebra.Format(left), algebra.Format(right)})
}

func TestClassifierConcurrentUse(t *testing.T) {
	memo, err := varscope.NewMemo(varscope.Finder{}, 64)
	require.NoError(t, err)
	rec := &Recorder{}
	c := New(memo, WithTracer(rec))

	left := algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?x))`)
	right := algebra.MustParse(`(bgp (triple ?s <http://ex/q> ?o))`)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.True(t, c.IsLinear(left, right))
			}
		}()
	}
	wg.Wait()
	assert.Len(t, rec.Decisions(), 400)
	assert.Len(t, rec.Steps(), 400*7)
}

func TestRecorderAndTee(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	c := New(nil, WithTracer(Tee(a, nil, b)))

	d := c.Explain(
		algebra.MustParse(`(table unit)`),
		algebra.MustParse(`(table empty)`),
	)
	assert.Equal(t, RuleTableTable, d.Rule)

	for _, r := range []*Recorder{a, b} {
		require.Len(t, r.Decisions(), 1)
		assert.Equal(t, d, r.Decisions()[0])
		assert.Equal(t, d.Steps, r.Steps())
	}
	a.Reset()
	assert.Empty(t, a.Decisions())
	assert.Empty(t, a.Steps())
}

func TestLogTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := New(nil, WithTracer(LogTracer{Logger: logger}))

	c.IsLinear(
		algebra.MustParse(`(bgp (triple ?s ?p ?o))`),
		algebra.MustParse(`(extend ((?z 1)) (bgp (triple ?s ?p ?o)))`),
	)
	out := buf.String()
	assert.Contains(t, out, `msg="join rule" rule=modifier passed=false`)
	assert.Contains(t, out, `msg="join classified" linear=false left=bgp right=extend rule=modifier`)
}

func TestDecisionJSON(t *testing.T) {
	d := New(nil).Explain(
		algebra.MustParse(`(bgp (triple ?s <http://ex/p> ?a))`),
		algebra.MustParse(`(filter (> ?a 5) (bgp (triple ?s <http://ex/q> ?o)))`),
	)
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, false, got["linear"])
	assert.Equal(t, "filter-only", got["rule"])
	assert.Equal(t, "filter", got["right_kind"])
	sets := got["sets"].(map[string]any)
	assert.Equal(t, []any{"?a"}, sets["right_filter_only"])
}

func TestParseRule(t *testing.T) {
	for r := RuleNegation; r <= RuleAssignScope; r++ {
		parsed, err := ParseRule(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	_, err := ParseRule("bogus")
	assert.Error(t, err)

	var r Rule
	require.NoError(t, r.UnmarshalText([]byte("optional")))
	assert.Equal(t, RuleOptional, r)
}
