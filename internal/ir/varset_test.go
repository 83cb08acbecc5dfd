package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarSetOperations(t *testing.T) {
	a := NewVarSet("x", "y", "z")
	b := NewVarSet("y", "w")

	assert.Equal(t, NewVarSet("x", "z"), a.Minus(b))
	assert.Equal(t, NewVarSet("w", "x", "y", "z"), a.Union(b))
	assert.Equal(t, NewVarSet("y"), a.Intersect(b))
	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(NewVarSet("q")))
	assert.True(t, NewVarSet("x").SubsetOf(a))
	assert.False(t, b.SubsetOf(a))
}

func TestVarSetOperationsDoNotMutate(t *testing.T) {
	a := NewVarSet("x", "y")
	b := NewVarSet("y")

	_ = a.Minus(b)
	_ = a.Union(NewVarSet("q"))

	assert.Equal(t, NewVarSet("x", "y"), a)
}

func TestVarSetNilIsEmpty(t *testing.T) {
	var s VarSet
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("x"))
	assert.False(t, s.Intersects(NewVarSet("x")))
	assert.True(t, s.SubsetOf(NewVarSet()))
	assert.Equal(t, "-", s.String())
	assert.NotNil(t, s.Clone())
}

func TestVarSetSortedAndString(t *testing.T) {
	s := NewVarSet("b", "a", "c")
	assert.Equal(t, []Var{"a", "b", "c"}, s.Sorted())
	assert.Equal(t, "?a ?b ?c", s.String())
}

func TestVarSetEqual(t *testing.T) {
	assert.True(t, NewVarSet("a", "b").Equal(NewVarSet("b", "a")))
	assert.False(t, NewVarSet("a").Equal(NewVarSet("a", "b")))
}

func TestVarSetMarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewVarSet("y", "x"))
	require.NoError(t, err)
	assert.JSONEq(t, `["?x","?y"]`, string(data))
}
