package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Binding maps variables to concrete terms (one query solution).
// Values are never Var and never nil; an unbound variable is simply absent.
type Binding map[Var]Term

// Get returns the value bound to v, or nil if v is unbound.
func (b Binding) Get(v Var) Term {
	return b[v]
}

// Vars returns the domain of the binding.
func (b Binding) Vars() VarSet {
	out := make(VarSet, len(b))
	for v := range b {
		out[v] = struct{}{}
	}
	return out
}

// Clone returns an independent copy.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Compatible reports whether b and other agree on every shared variable.
func (b Binding) Compatible(other Binding) bool {
	small, large := b, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for v, t := range small {
		if u, ok := large[v]; ok && !TermsEqual(t, u) {
			return false
		}
	}
	return true
}

// Merge combines two compatible bindings into a new one.
// Returns false if they disagree on a shared variable.
func (b Binding) Merge(other Binding) (Binding, bool) {
	if !b.Compatible(other) {
		return nil, false
	}
	merged := make(Binding, len(b)+len(other))
	for k, v := range b {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged, true
}

// Restrict returns the binding limited to vars.
func (b Binding) Restrict(vars VarSet) Binding {
	out := make(Binding, len(vars))
	for v := range vars {
		if t, ok := b[v]; ok {
			out[v] = t
		}
	}
	return out
}

// String renders the binding canonically, e.g. "(?a <x>) (?b 1)".
func (b Binding) String() string {
	return CanonicalBinding(b)
}

// MarshalJSON encodes the binding as an object keyed by variable name
// (sorted) with SSE-rendered term values.
func (b Binding) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range b.Vars().Sorted() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(v))
		if err != nil {
			return nil, fmt.Errorf("marshal var %q: %w", v, err)
		}
		val, err := json.Marshal(CanonicalTerm(b[v]))
		if err != nil {
			return nil, fmt.Errorf("marshal value for %q: %w", v, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
