package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/linjoin/internal/ir"
)

const defaultGraph = ""

// encodeTerm converts a concrete term to its stored TEXT form.
func encodeTerm(t ir.Term) (string, error) {
	if !ir.IsConcrete(t) {
		return "", fmt.Errorf("cannot store non-concrete term %v", t)
	}
	return ir.CanonicalTerm(t), nil
}

// encodeGraph maps nil to the default graph.
func encodeGraph(g ir.Term) (string, error) {
	if g == nil {
		return defaultGraph, nil
	}
	if _, ok := g.(ir.IRI); !ok {
		return "", fmt.Errorf("graph name must be an IRI, got %v", g)
	}
	return encodeTerm(g)
}

// decodeTerm is the inverse of encodeTerm.
func decodeTerm(s string) (ir.Term, error) {
	switch {
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return ir.IRI(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, `"`):
		v, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("decode string term %q: %w", s, err)
		}
		return ir.String(v), nil
	case s == "true":
		return ir.Bool(true), nil
	case s == "false":
		return ir.Bool(false), nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode term %q: unknown form", s)
		}
		return ir.Int(n), nil
	}
}

func decodeGraph(s string) (ir.Term, error) {
	if s == defaultGraph {
		return nil, nil
	}
	return decodeTerm(s)
}
