package ir

import (
	"cmp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Term is a sealed interface over RDF terms and query variables.
// Only IRI, String, Int, Bool and Var implement it.
type Term interface {
	term() // Sealed - only these types implement it

	// String renders the term in SSE syntax (<iri>, "str", 42, true, ?v).
	String() string
}

// IRI is an absolute or prefixed IRI without the surrounding angle brackets.
type IRI string

func (IRI) term() {}

func (t IRI) String() string { return "<" + string(t) + ">" }

// String is a plain string literal.
type String string

func (String) term() {}

func (t String) String() string { return strconv.Quote(string(t)) }

// Int is an integer literal. Always int64, never float.
type Int int64

func (Int) term() {}

func (t Int) String() string { return strconv.FormatInt(int64(t), 10) }

// Bool is a boolean literal.
type Bool bool

func (Bool) term() {}

func (t Bool) String() string { return strconv.FormatBool(bool(t)) }

// Var is a query variable, stored without the leading '?'.
type Var string

func (Var) term() {}

func (v Var) String() string { return "?" + string(v) }

// NewIRI creates an NFC normalized IRI.
func NewIRI(s string) IRI {
	return IRI(norm.NFC.String(s))
}

// NewString creates an NFC normalized string literal.
func NewString(s string) String {
	return String(norm.NFC.String(s))
}

// NewVar creates a variable, accepting an optional leading '?'.
func NewVar(name string) Var {
	return Var(strings.TrimPrefix(name, "?"))
}

// IsVar reports whether t is a variable.
func IsVar(t Term) bool {
	_, ok := t.(Var)
	return ok
}

// IsConcrete reports whether t is a non-nil, non-variable term.
func IsConcrete(t Term) bool {
	return t != nil && !IsVar(t)
}

// kindRank orders term kinds for CompareTerms: unbound < bool < int < string < iri.
func kindRank(t Term) int {
	switch t.(type) {
	case nil:
		return 0
	case Bool:
		return 1
	case Int:
		return 2
	case String:
		return 3
	case IRI:
		return 4
	default:
		return 5
	}
}

// CompareTerms gives a total order over terms, used for ORDER BY and for
// deterministic output. nil (unbound) sorts first.
func CompareTerms(a, b Term) int {
	if c := cmp.Compare(kindRank(a), kindRank(b)); c != 0 {
		return c
	}
	switch av := a.(type) {
	case nil:
		return 0
	case Bool:
		bv := b.(Bool)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		default:
			return 1
		}
	case Int:
		return cmp.Compare(av, b.(Int))
	case String:
		return strings.Compare(string(av), string(b.(String)))
	case IRI:
		return strings.Compare(string(av), string(b.(IRI)))
	default:
		return strings.Compare(a.String(), b.String())
	}
}

// TermsEqual reports value equality of two terms. nil equals only nil.
func TermsEqual(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}
