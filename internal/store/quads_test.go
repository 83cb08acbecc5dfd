package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linjoin/internal/ir"
)

var (
	alice = ir.IRI("http://ex/alice")
	bob   = ir.IRI("http://ex/bob")
	knows = ir.IRI("http://ex/knows")
	name  = ir.IRI("http://ex/name")
	age   = ir.IRI("http://ex/age")
	g1    = ir.IRI("http://ex/g1")
	g2    = ir.IRI("http://ex/g2")
)

func sampleQuads() []ir.Quad {
	return []ir.Quad{
		{S: alice, P: knows, O: bob},
		{S: alice, P: name, O: ir.String("Alice")},
		{S: bob, P: name, O: ir.String("Bob")},
		{S: bob, P: age, O: ir.Int(42)},
		{G: g1, S: alice, P: age, O: ir.Int(30)},
		{G: g2, S: bob, P: knows, O: alice},
		{G: g2, S: bob, P: ir.IRI("http://ex/active"), O: ir.Bool(true)},
	}
}

func loadSample(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	added, err := s.AddQuads(context.Background(), sampleQuads())
	require.NoError(t, err)
	require.Equal(t, 7, added)
	return s
}

func TestAddQuadsDeduplicates(t *testing.T) {
	s := loadSample(t)
	ctx := context.Background()

	added, err := s.AddQuads(ctx, sampleQuads()[:3])
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestAddQuadsRejectsVariables(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.AddQuads(ctx, []ir.Quad{
		{S: alice, P: knows, O: bob},
		{S: ir.Var("x"), P: knows, O: bob},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quad 1")

	// The whole batch is rolled back.
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAddQuadsRejectsLiteralGraph(t *testing.T) {
	s := createTestStore(t)
	_, err := s.AddQuads(context.Background(), []ir.Quad{{G: ir.String("g"), S: alice, P: knows, O: bob}})
	assert.Error(t, err)
}

func TestMatchDefaultGraph(t *testing.T) {
	s := loadSample(t)

	got, err := s.Match(context.Background(), ir.Quad{S: ir.Var("s"), P: name, O: ir.Var("o")})
	require.NoError(t, err)
	assert.Equal(t, []ir.Quad{
		{S: alice, P: name, O: ir.String("Alice")},
		{S: bob, P: name, O: ir.String("Bob")},
	}, got)
}

func TestMatchRoundTripsTermKinds(t *testing.T) {
	s := loadSample(t)

	got, err := s.Match(context.Background(), ir.Quad{S: bob})
	require.NoError(t, err)
	assert.Equal(t, []ir.Quad{
		{S: bob, P: name, O: ir.String("Bob")},
		{S: bob, P: age, O: ir.Int(42)},
	}, got)

	got, err = s.Match(context.Background(), ir.Quad{G: g2, O: ir.Bool(true)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ir.Bool(true), got[0].O)
	assert.Equal(t, g2, got[0].G)
}

func TestMatchNamedGraphs(t *testing.T) {
	s := loadSample(t)
	ctx := context.Background()

	named, err := s.Match(ctx, ir.Quad{G: ir.Var("g")})
	require.NoError(t, err)
	assert.Len(t, named, 3)

	one, err := s.Match(ctx, ir.Quad{G: g1})
	require.NoError(t, err)
	assert.Equal(t, []ir.Quad{{G: g1, S: alice, P: age, O: ir.Int(30)}}, one)

	none, err := s.Match(ctx, ir.Quad{G: ir.IRI("http://ex/missing")})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestMatchNormalizesStrings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.AddQuads(ctx, []ir.Quad{{S: alice, P: name, O: ir.String("café")}})
	require.NoError(t, err)

	got, err := s.Match(ctx, ir.Quad{O: ir.String("café")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ir.String("café"), got[0].O)
}

func TestGraphs(t *testing.T) {
	s := loadSample(t)
	graphs, err := s.Graphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ir.IRI{g1, g2}, graphs)
}

func TestLoadDatasetIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	loaded, err := s.LoadDataset(ctx, "people", sampleQuads())
	require.NoError(t, err)
	assert.True(t, loaded)

	loaded, err = s.LoadDataset(ctx, "people", sampleQuads())
	require.NoError(t, err)
	assert.False(t, loaded)

	_, err = s.LoadDataset(ctx, "people", sampleQuads()[:2])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different content")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestDecodeTermRejectsGarbage(t *testing.T) {
	_, err := decodeTerm("not-a-term")
	assert.Error(t, err)
	_, err = decodeTerm(`"unterminated`)
	assert.Error(t, err)
}

func TestDatasetsAreIsolated(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LoadDataset(ctx, "people", sampleQuads())
	require.NoError(t, err)
	_, err = s.LoadDataset(ctx, "pair", []ir.Quad{
		{S: alice, P: knows, O: bob},
		{G: g1, S: bob, P: knows, O: alice},
	})
	require.NoError(t, err)

	total, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, total, "a quad shared by two datasets is stored once per dataset")

	pair := s.Dataset("pair")
	assert.Equal(t, "pair", pair.Name())
	n, err := pair.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ages, err := pair.Match(ctx, ir.Quad{S: ir.Var("s"), P: age, O: ir.Var("o")})
	require.NoError(t, err)
	assert.Empty(t, ages)

	ages, err = s.Dataset("people").Match(ctx, ir.Quad{S: ir.Var("s"), P: age, O: ir.Var("o")})
	require.NoError(t, err)
	assert.Equal(t, []ir.Quad{{S: bob, P: age, O: ir.Int(42)}}, ages)

	graphs, err := pair.Graphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ir.IRI{g1}, graphs)

	// Loaded datasets are not part of the unnamed one.
	unnamedQuads, err := s.Match(ctx, ir.Quad{})
	require.NoError(t, err)
	assert.Empty(t, unnamedQuads)

	missing, err := s.Dataset("missing").Match(ctx, ir.Quad{})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestLoadDatasetRequiresName(t *testing.T) {
	s := createTestStore(t)
	_, err := s.LoadDataset(context.Background(), "", sampleQuads())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}
