package ir

import (
	"encoding/json"
	"slices"
	"strings"
)

// VarSet is an unordered, deduplicated set of variables.
// The zero value (nil) is an empty, read-only set; use NewVarSet before Add.
type VarSet map[Var]struct{}

// NewVarSet creates a set holding vars.
func NewVarSet(vars ...Var) VarSet {
	s := make(VarSet, len(vars))
	for _, v := range vars {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts vars into the set.
func (s VarSet) Add(vars ...Var) {
	for _, v := range vars {
		s[v] = struct{}{}
	}
}

// AddAll inserts every member of other.
func (s VarSet) AddAll(other VarSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Has reports membership.
func (s VarSet) Has(v Var) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members.
func (s VarSet) Len() int { return len(s) }

// Clone returns an independent copy. A nil set clones to an empty set.
func (s VarSet) Clone() VarSet {
	out := make(VarSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Minus returns s \ other as a new set.
func (s VarSet) Minus(other VarSet) VarSet {
	out := make(VarSet, len(s))
	for v := range s {
		if !other.Has(v) {
			out[v] = struct{}{}
		}
	}
	return out
}

// Union returns s ∪ other as a new set.
func (s VarSet) Union(other VarSet) VarSet {
	out := s.Clone()
	out.AddAll(other)
	return out
}

// Intersect returns s ∩ other as a new set.
func (s VarSet) Intersect(other VarSet) VarSet {
	out := make(VarSet)
	for v := range s {
		if other.Has(v) {
			out[v] = struct{}{}
		}
	}
	return out
}

// Intersects reports whether s and other share at least one member.
func (s VarSet) Intersects(other VarSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for v := range small {
		if large.Has(v) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every member of s is in other.
func (s VarSet) SubsetOf(other VarSet) bool {
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Equal reports set equality.
func (s VarSet) Equal(other VarSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

// Sorted returns the members in lexical order.
func (s VarSet) Sorted() []Var {
	out := make([]Var, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// String renders the set as "?a ?b" in sorted order, or "-" when empty.
func (s VarSet) String() string {
	if len(s) == 0 {
		return "-"
	}
	vars := s.Sorted()
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the set as a sorted array of "?name" strings.
func (s VarSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.names())
}

func (s VarSet) names() []string {
	vars := s.Sorted()
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.String()
	}
	return out
}
