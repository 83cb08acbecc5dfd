package ir

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ Term = IRI("http://example.org/a")
	var _ Term = String("x")
	var _ Term = Int(42)
	var _ Term = Bool(true)
	var _ Term = Var("s")
}

func TestTermString(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{IRI("http://example.org/a"), "<http://example.org/a>"},
		{String("hello"), `"hello"`},
		{String(`say "hi"`), `"say \"hi\""`},
		{Int(-7), "-7"},
		{Bool(false), "false"},
		{Var("s"), "?s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.term.String())
	}
}

func TestNewVarStripsMarker(t *testing.T) {
	assert.Equal(t, Var("x"), NewVar("?x"))
	assert.Equal(t, Var("x"), NewVar("x"))
}

func TestNFCNormalization(t *testing.T) {
	// "é" as e + combining acute (NFD) vs precomposed (NFC)
	nfd := "cafe\u0301"
	nfc := "caf\u00e9"

	assert.Equal(t, String(nfc), NewString(nfd))
	assert.Equal(t, IRI("http://x/"+nfc), NewIRI("http://x/"+nfd))
	assert.Equal(t, CanonicalTerm(String(nfc)), CanonicalTerm(String(nfd)))
}

func TestIsVarAndConcrete(t *testing.T) {
	assert.True(t, IsVar(Var("a")))
	assert.False(t, IsVar(Int(1)))
	assert.True(t, IsConcrete(Int(1)))
	assert.False(t, IsConcrete(Var("a")))
	assert.False(t, IsConcrete(nil))
}

func TestCompareTermsTotalOrder(t *testing.T) {
	terms := []Term{IRI("b"), String("z"), Int(3), nil, Bool(true), Int(-1), IRI("a"), Bool(false)}
	slices.SortFunc(terms, CompareTerms)

	want := []Term{nil, Bool(false), Bool(true), Int(-1), Int(3), String("z"), IRI("a"), IRI("b")}
	assert.Equal(t, want, terms)
}

func TestTermsEqual(t *testing.T) {
	assert.True(t, TermsEqual(Int(1), Int(1)))
	assert.False(t, TermsEqual(Int(1), String("1")))
	assert.True(t, TermsEqual(nil, nil))
	assert.False(t, TermsEqual(nil, Int(0)))
}
