package rewrite

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/joinclass"
)

func TestRewriteDataDriven(t *testing.T) {
	rw := New()
	datadriven.RunTest(t, "testdata/rewrite", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "rewrite":
			plan, err := algebra.Parse(d.Input)
			if err != nil {
				d.Fatalf(t, "%v", err)
			}
			res, err := rw.Rewrite(context.Background(), plan)
			if err != nil {
				d.Fatalf(t, "%v", err)
			}
			var sb strings.Builder
			sb.WriteString(algebra.FormatIndent(res.Plan))
			if len(res.Joins) == 0 {
				sb.WriteString("\njoins: none")
			}
			for _, j := range res.Joins {
				if j.Decision.Linear {
					sb.WriteString("\njoin: linear")
				} else {
					sb.WriteString("\njoin: reject (" + j.Decision.Rule.String() + ")")
				}
			}
			return sb.String()
		default:
			d.Fatalf(t, "unsupported command: %s", d.Cmd)
			return ""
		}
	})
}

const chain = `(join (join (bgp (triple ?s <http://ex/p> ?o)) (bgp (triple ?s <http://ex/q> ?x))) (bgp (triple ?x <http://ex/r> ?y)))`

func TestRewriteResult(t *testing.T) {
	rw := New(WithPassIDGenerator(NewFixedGenerator("pass-1")))
	res, err := rw.Rewrite(context.Background(), algebra.MustParse(chain))
	require.NoError(t, err)

	assert.Equal(t, "pass-1", res.PassID)
	assert.Equal(t, 2, res.Linearized)
	require.Len(t, res.Joins, 2)
	assert.Equal(t, `(bgp (triple ?s <http://ex/p> ?o))`, res.Joins[0].Left)
	assert.Equal(t, `(sequence (bgp (triple ?s <http://ex/p> ?o)) (bgp (triple ?s <http://ex/q> ?x)))`, res.Joins[1].Left)
}

func TestRewriteDoesNotMutateInput(t *testing.T) {
	plan := algebra.MustParse(chain)
	before := algebra.Format(plan)

	res, err := New().Rewrite(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, before, algebra.Format(plan))
	assert.NotEqual(t, before, algebra.Format(res.Plan))
}

func TestRewriteSharesUntouchedSubtrees(t *testing.T) {
	plan := algebra.MustParse(`(union (bgp (triple ?s ?p ?o)) (join (bgp (triple ?s ?p ?o)) (bgp (triple ?o ?q ?z))))`)
	res, err := New().Rewrite(context.Background(), plan)
	require.NoError(t, err)

	u := res.Plan.(*algebra.Union)
	assert.Same(t, plan.(*algebra.Union).Left, u.Left)
	assert.IsType(t, &algebra.Sequence{}, u.Right)
}

func TestRewriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	rw := New(WithMetrics(m))

	_, err := rw.Rewrite(context.Background(), algebra.MustParse(chain))
	require.NoError(t, err)
	_, err = rw.Rewrite(context.Background(), algebra.MustParse(
		`(join (table (vars ?x) (row [?x 1])) (table (vars ?x) (row [?x 2])))`))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.joins.WithLabelValues("linear", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.joins.WithLabelValues("materialize", "table-table")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.passes))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.defects))
	assert.Equal(t, 1, testutil.CollectAndCount(m.passDuration))

	count, err := testutil.GatherAndCount(reg, "linjoin_rewrite_joins_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRewriteDefectBecomesError(t *testing.T) {
	m := NewMetrics(nil)
	rw := New(WithMetrics(m))

	plan := &algebra.Join{Left: nil, Right: algebra.MustParse(`(bgp)`)}
	res, err := rw.Rewrite(context.Background(), plan)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsAssertionFailure(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.defects))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.passes))
}

func TestRewriteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMetrics(nil)
	_, err := New(WithMetrics(m)).Rewrite(ctx, algebra.MustParse(chain))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.defects))
}

func TestRewriteWithoutMemo(t *testing.T) {
	res, err := New(WithMemoSize(0)).Rewrite(context.Background(), algebra.MustParse(chain))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Linearized)
}

func TestRewriteTracerAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &joinclass.Recorder{}

	rw := New(
		WithLogger(logger),
		WithTracer(rec),
		WithPassIDGenerator(NewFixedGenerator("p-7")),
	)
	_, err := rw.Rewrite(context.Background(), algebra.MustParse(chain))
	require.NoError(t, err)

	assert.Len(t, rec.Decisions(), 2)
	out := buf.String()
	assert.Contains(t, out, "pass_id=p-7")
	assert.Contains(t, out, `msg="join site" pass_id=p-7 linear=true`)
	assert.Contains(t, out, `msg="rewrite pass complete" pass_id=p-7 joins=2 linearized=2`)
}

func TestDefaultPassIDIsUUIDv7(t *testing.T) {
	res, err := New().Rewrite(context.Background(), algebra.MustParse(`(bgp)`))
	require.NoError(t, err)

	parsed, err := uuid.Parse(res.PassID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGeneratorExhaustion(t *testing.T) {
	g := NewFixedGenerator("a")
	assert.Equal(t, "a", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
