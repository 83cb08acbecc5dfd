package harness

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linjoin/internal/joinclass"
)

func boolPtr(b bool) *bool { return &b }

func TestRun_ScopeScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/scope.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors())
	assert.Equal(t, "scope-pass", result.PassID)
	require.Len(t, result.Cases, 4)

	shared := result.Cases[0]
	require.NotNil(t, shared.Comparison)
	assert.True(t, shared.Comparison.Same)
	assert.Len(t, shared.Comparison.Join, 2)

	filterOnly := result.Cases[1]
	require.NotNil(t, filterOnly.Decision)
	assert.Equal(t, joinclass.RuleFilterOnly, filterOnly.Decision.Rule)
	require.NotNil(t, filterOnly.Comparison)
	assert.Empty(t, filterOnly.Comparison.Join)
	assert.Len(t, filterOnly.Comparison.Sequence, 1)

	path := result.Cases[3]
	assert.True(t, path.Unsupported)
	assert.Nil(t, path.Comparison)
	assert.True(t, path.Pass)
}

func TestRun_WrongExpectations(t *testing.T) {
	s := &Scenario{
		Name:        "wrong",
		Description: "expectations that do not hold",
		Cases: []Case{
			{
				Name:   "verdict",
				Left:   "(bgp (triple ?s <http://ex/p> ?o))",
				Right:  "(bgp (triple ?s <http://ex/q> ?x))",
				Expect: boolPtr(false),
			},
			{
				Name:   "rule",
				Left:   "(table (vars ?x) (row [?x 1]))",
				Right:  "(table (vars ?x) (row [?x 2]))",
				Expect: boolPtr(false),
				Rule:   "optional",
			},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"verdict: verdict: expected reject, got linear",
		"rule: rule: expected optional, got table-table",
	}, result.Errors())
}

func TestRun_ParseErrorIsCaseFailure(t *testing.T) {
	s := &Scenario{
		Name:        "parse",
		Description: "unparseable side",
		Cases: []Case{
			{Name: "bad", Left: "(bgp", Right: "(bgp)", Expect: boolPtr(true)},
			{Name: "good", Left: "(bgp)", Right: "(bgp)", Expect: boolPtr(true)},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 2)
	assert.Nil(t, result.Cases[0].Decision)
	require.Len(t, result.Cases[0].Errors, 1)
	assert.Contains(t, result.Cases[0].Errors[0], "left:")
	assert.True(t, result.Cases[1].Pass)
}

func TestRun_AcceptedJoinMustAgree(t *testing.T) {
	// The optional variable ?a is normalized away because the sibling
	// table fixes it, so the join is accepted even though the strategies
	// disagree on this data.
	s := &Scenario{
		Name:        "boundary",
		Description: "accepted join that differs",
		Dataset:     "testdata/datasets/people.cue",
		Cases: []Case{{
			Name: "overlap",
			Left: "(bgp (triple ?x <http://ex/age> ?a))",
			Right: "(join (leftjoin (table (vars ?k) (row [?k 0])) (table (vars ?k ?a) (row [?k 0] [?a 2])))" +
				" (table (vars ?a) (row [?a 30])))",
			Expect: boolPtr(true),
		}},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Cases[0].Errors, 1)
	assert.Contains(t, result.Cases[0].Errors[0], "differential: expected same solutions for an accepted join, got join=0 sequence=1")
}

func TestRun_MissingDataset(t *testing.T) {
	s := &Scenario{
		Name:        "missing",
		Description: "dataset path does not exist",
		Dataset:     "testdata/datasets/nope.cue",
		Cases:       []Case{{Name: "a", Left: "(bgp)", Right: "(bgp)", Expect: boolPtr(true)}},
	}
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load dataset")
}

func TestRun_Cancelled(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/rejections.yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_LogsClassifierSteps(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/rejections.yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err = Run(context.Background(), s, WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "join rule")
	assert.Contains(t, out, "rule=table-table")
	assert.Contains(t, out, "scenario complete")
}
