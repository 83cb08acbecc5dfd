package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalTerm renders a term in its canonical SSE form.
// CRITICAL: this is the ONLY encoding used for storage keys and binding
// hashes. Strings and IRIs are NFC normalized at this boundary even if the
// caller skipped NewIRI/NewString.
func CanonicalTerm(t Term) string {
	switch v := t.(type) {
	case nil:
		return "UNDEF"
	case IRI:
		return IRI(norm.NFC.String(string(v))).String()
	case String:
		return String(norm.NFC.String(string(v))).String()
	default:
		return t.String()
	}
}

// CanonicalBinding renders a binding with variables in sorted order:
//
//	(?a <http://x>) (?b 1)
//
// The empty binding renders as "()".
func CanonicalBinding(b Binding) string {
	if len(b) == 0 {
		return "()"
	}
	var sb strings.Builder
	for i, v := range b.Vars().Sorted() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('(')
		sb.WriteString(v.String())
		sb.WriteByte(' ')
		sb.WriteString(CanonicalTerm(b[v]))
		sb.WriteByte(')')
	}
	return sb.String()
}
