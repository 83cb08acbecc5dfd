package testutil

import (
	"fmt"
	"math/rand/v2"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

// GenConfig controls the shape of generated plans and datasets.
type GenConfig struct {
	Vars       []ir.Var
	Subjects   []ir.Term
	Predicates []ir.Term
	Objects    []ir.Term

	// MaxDepth bounds operator nesting above the leaves.
	MaxDepth int

	// Kinds lists the inner operators to draw from. Leaves are always BGP
	// or Table.
	Kinds []algebra.Kind
}

// DefaultGenConfig returns a small vocabulary that makes joins on shared
// variables likely.
func DefaultGenConfig() GenConfig {
	cfg := GenConfig{
		Vars:     []ir.Var{"a", "b", "c", "d"},
		MaxDepth: 3,
		Kinds: []algebra.Kind{
			algebra.KindJoin,
			algebra.KindLeftJoin,
			algebra.KindUnion,
			algebra.KindFilter,
			algebra.KindDistinct,
			algebra.KindProject,
			algebra.KindMinus,
		},
	}
	for i := range 3 {
		cfg.Subjects = append(cfg.Subjects, ir.IRI(fmt.Sprintf("http://ex/e%d", i)))
		cfg.Predicates = append(cfg.Predicates, ir.IRI(fmt.Sprintf("http://ex/p%d", i)))
	}
	cfg.Objects = append(cfg.Objects, cfg.Subjects...)
	cfg.Objects = append(cfg.Objects, ir.Int(0), ir.Int(1), ir.Int(2))
	return cfg
}

// Generator produces random algebra trees and datasets from a seed. The
// same seed and config always produce the same sequence of values.
//
// Thread-safety: a Generator must not be shared between goroutines.
type Generator struct {
	rnd *rand.Rand
	cfg GenConfig
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64, cfg GenConfig) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		cfg: cfg,
	}
}

// Plan returns a random tree of at most MaxDepth operator levels.
func (g *Generator) Plan() algebra.Node {
	return g.plan(g.cfg.MaxDepth)
}

// Pair returns two independent plans over the shared variable pool.
func (g *Generator) Pair() (left, right algebra.Node) {
	return g.Plan(), g.Plan()
}

// Dataset returns n random triples in the default graph. Duplicates are
// possible.
func (g *Generator) Dataset(n int) []ir.Quad {
	quads := make([]ir.Quad, n)
	for i := range quads {
		quads[i] = ir.Quad{
			S: pick(g.rnd, g.cfg.Subjects),
			P: pick(g.rnd, g.cfg.Predicates),
			O: pick(g.rnd, g.cfg.Objects),
		}
	}
	return quads
}

func (g *Generator) plan(depth int) algebra.Node {
	if depth <= 0 || len(g.cfg.Kinds) == 0 || g.rnd.IntN(4) == 0 {
		return g.leaf()
	}
	switch pick(g.rnd, g.cfg.Kinds) {
	case algebra.KindJoin:
		return &algebra.Join{Left: g.plan(depth - 1), Right: g.plan(depth - 1)}
	case algebra.KindLeftJoin:
		lj := &algebra.LeftJoin{Left: g.plan(depth - 1), Right: g.plan(depth - 1)}
		if g.rnd.IntN(3) == 0 {
			lj.Exprs = []algebra.Expr{g.Expr()}
		}
		return lj
	case algebra.KindUnion:
		return &algebra.Union{Left: g.plan(depth - 1), Right: g.plan(depth - 1)}
	case algebra.KindMinus:
		return &algebra.Minus{Left: g.plan(depth - 1), Right: g.plan(depth - 1)}
	case algebra.KindFilter:
		return &algebra.Filter{Exprs: []algebra.Expr{g.Expr()}, Sub: g.plan(depth - 1)}
	case algebra.KindDistinct:
		return &algebra.Distinct{Sub: g.plan(depth - 1)}
	case algebra.KindProject:
		sub := g.plan(depth - 1)
		var vars []ir.Var
		for _, v := range algebra.MentionedVars(sub).Sorted() {
			if g.rnd.IntN(2) == 0 {
				vars = append(vars, v)
			}
		}
		return &algebra.Project{Vars: vars, Sub: sub}
	default:
		return g.leaf()
	}
}

func (g *Generator) leaf() algebra.Node {
	if g.rnd.IntN(4) == 0 {
		return g.table()
	}
	bgp := &algebra.BGP{}
	for range 1 + g.rnd.IntN(2) {
		bgp.Triples = append(bgp.Triples, algebra.Triple{
			S: g.termOrVar(g.cfg.Subjects, 7),
			P: g.termOrVar(g.cfg.Predicates, 1),
			O: g.termOrVar(g.cfg.Objects, 6),
		})
	}
	return bgp
}

// termOrVar returns a variable with probability tenths/10, else a term.
func (g *Generator) termOrVar(terms []ir.Term, tenths int) ir.Term {
	if g.rnd.IntN(10) < tenths {
		return pick(g.rnd, g.cfg.Vars)
	}
	return pick(g.rnd, terms)
}

func (g *Generator) table() *algebra.Table {
	t := &algebra.Table{}
	for _, v := range g.cfg.Vars {
		if len(t.Vars) < 2 && g.rnd.IntN(3) == 0 {
			t.Vars = append(t.Vars, v)
		}
	}
	for range g.rnd.IntN(4) {
		row := ir.Binding{}
		for _, v := range t.Vars {
			if g.rnd.IntN(5) > 0 {
				row[v] = pick(g.rnd, g.cfg.Objects)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Expr returns a random filter condition over the variable pool.
func (g *Generator) Expr() algebra.Expr {
	v := &algebra.ExprVar{Var: pick(g.rnd, g.cfg.Vars)}
	switch g.rnd.IntN(6) {
	case 0:
		return algebra.Call("=", v, algebra.C(pick(g.rnd, g.cfg.Objects)))
	case 1:
		return algebra.Call("!=", v, algebra.C(pick(g.rnd, g.cfg.Objects)))
	case 2:
		return algebra.Call(">", v, algebra.C(ir.Int(g.rnd.IntN(3))))
	case 3:
		return algebra.Call("bound", v)
	case 4:
		return algebra.Call("!", algebra.Call("bound", v))
	default:
		return algebra.Call("=", v, &algebra.ExprVar{Var: pick(g.rnd, g.cfg.Vars)})
	}
}

func pick[T any](rnd *rand.Rand, xs []T) T {
	return xs[rnd.IntN(len(xs))]
}
