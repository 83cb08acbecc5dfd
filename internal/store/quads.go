package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/linjoin/internal/ir"
)

// unnamed is the dataset of quads added with AddQuads.
const unnamed = ""

// AddQuads inserts quads into the unnamed dataset in one transaction and
// returns how many were new. Duplicates of stored quads are ignored.
func (s *Store) AddQuads(ctx context.Context, quads []ir.Quad) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("add quads: begin: %w", err)
	}
	defer tx.Rollback()

	added, err := insertQuads(ctx, tx, unnamed, quads)
	if err != nil {
		return 0, fmt.Errorf("add quads: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("add quads: commit: %w", err)
	}
	return added, nil
}

func insertQuads(ctx context.Context, tx *sql.Tx, dataset string, quads []ir.Quad) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quads (dataset, g, s, p, o) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(dataset, g, s, p, o) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	added := 0
	for i, q := range quads {
		row, err := encodeQuad(q)
		if err != nil {
			return 0, fmt.Errorf("quad %d: %w", i, err)
		}
		res, err := stmt.ExecContext(ctx, dataset, row[0], row[1], row[2], row[3])
		if err != nil {
			return 0, fmt.Errorf("quad %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		added += int(n)
	}
	return added, nil
}

func encodeQuad(q ir.Quad) ([4]string, error) {
	var row [4]string
	var err error
	if row[0], err = encodeGraph(q.G); err != nil {
		return row, err
	}
	for i, t := range []ir.Term{q.S, q.P, q.O} {
		if row[i+1], err = encodeTerm(t); err != nil {
			return row, err
		}
	}
	return row, nil
}

// View reads the quads of one dataset. It satisfies eval.Source.
type View struct {
	store   *Store
	dataset string
}

// Dataset returns a view of the quads loaded under name. A name that was
// never loaded has no quads.
func (s *Store) Dataset(name string) *View {
	return &View{store: s, dataset: name}
}

// Name returns the dataset the view reads.
func (v *View) Name() string { return v.dataset }

// Match returns the quads of the unnamed dataset matching pattern; see
// View.Match.
func (s *Store) Match(ctx context.Context, pattern ir.Quad) ([]ir.Quad, error) {
	return s.match(ctx, unnamed, pattern)
}

// Match returns the quads of the dataset matching pattern, in insertion
// order.
//
// In S, P and O a nil term or a variable matches anything. The graph
// position selects:
//
//	nil       the default graph only
//	variable  every named graph (not the default graph)
//	IRI       that named graph
func (v *View) Match(ctx context.Context, pattern ir.Quad) ([]ir.Quad, error) {
	return v.store.match(ctx, v.dataset, pattern)
}

func (s *Store) match(ctx context.Context, dataset string, pattern ir.Quad) ([]ir.Quad, error) {
	where := []string{"dataset = ?"}
	args := []any{dataset}

	switch g := pattern.G.(type) {
	case nil:
		where = append(where, "g = ?")
		args = append(args, defaultGraph)
	case ir.Var:
		where = append(where, "g <> ?")
		args = append(args, defaultGraph)
	default:
		enc, err := encodeGraph(g)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		where = append(where, "g = ?")
		args = append(args, enc)
	}

	for _, pos := range []struct {
		col  string
		term ir.Term
	}{{"s", pattern.S}, {"p", pattern.P}, {"o", pattern.O}} {
		if !ir.IsConcrete(pos.term) {
			continue
		}
		where = append(where, pos.col+" = ?")
		args = append(args, ir.CanonicalTerm(pos.term))
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT g, s, p, o FROM quads WHERE "+strings.Join(where, " AND ")+" ORDER BY seq ASC",
		args...)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	defer rows.Close()

	quads := []ir.Quad{}
	for rows.Next() {
		q, err := scanQuad(rows)
		if err != nil {
			return nil, err
		}
		quads = append(quads, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quads: %w", err)
	}
	return quads, nil
}

func scanQuad(rows *sql.Rows) (ir.Quad, error) {
	var g, s, p, o string
	if err := rows.Scan(&g, &s, &p, &o); err != nil {
		return ir.Quad{}, fmt.Errorf("scan quad: %w", err)
	}
	var q ir.Quad
	var err error
	if q.G, err = decodeGraph(g); err != nil {
		return ir.Quad{}, err
	}
	if q.S, err = decodeTerm(s); err != nil {
		return ir.Quad{}, err
	}
	if q.P, err = decodeTerm(p); err != nil {
		return ir.Quad{}, err
	}
	if q.O, err = decodeTerm(o); err != nil {
		return ir.Quad{}, err
	}
	return q, nil
}

// Graphs returns the named graphs of the unnamed dataset, sorted.
func (s *Store) Graphs(ctx context.Context) ([]ir.IRI, error) {
	return s.graphs(ctx, unnamed)
}

// Graphs returns the named graphs of the dataset, sorted.
func (v *View) Graphs(ctx context.Context) ([]ir.IRI, error) {
	return v.store.graphs(ctx, v.dataset)
}

func (s *Store) graphs(ctx context.Context, dataset string) ([]ir.IRI, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT g FROM quads WHERE dataset = ? AND g <> '' ORDER BY g COLLATE BINARY ASC
	`, dataset)
	if err != nil {
		return nil, fmt.Errorf("graphs: %w", err)
	}
	defer rows.Close()

	graphs := []ir.IRI{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		t, err := decodeTerm(g)
		if err != nil {
			return nil, err
		}
		iri, ok := t.(ir.IRI)
		if !ok {
			return nil, fmt.Errorf("graph column holds non-IRI %q", g)
		}
		graphs = append(graphs, iri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graphs: %w", err)
	}
	return graphs, nil
}

// Count returns the number of stored quads across all datasets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quads").Scan(&n); err != nil {
		return 0, fmt.Errorf("count quads: %w", err)
	}
	return n, nil
}

// Count returns the number of quads in the dataset.
func (v *View) Count(ctx context.Context) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM quads WHERE dataset = ?", v.dataset).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count quads of %s: %w", v.dataset, err)
	}
	return n, nil
}

// LoadDataset stores quads under a dataset name; read them back through
// Dataset(name). When the name was already loaded with the same content
// hash nothing is written and loaded is false. A changed hash is an error:
// datasets are append-only.
func (s *Store) LoadDataset(ctx context.Context, name string, quads []ir.Quad) (loaded bool, err error) {
	if name == unnamed {
		return false, errors.New("load dataset: name is required")
	}
	hash := ir.DatasetHash(quads)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("load dataset %s: begin: %w", name, err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT content_hash FROM loads WHERE name = ?", name).Scan(&existing)
	switch {
	case err == nil && existing == hash:
		return false, nil
	case err == nil:
		return false, fmt.Errorf("load dataset %s: already loaded with different content", name)
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("load dataset %s: %w", name, err)
	}

	if _, err := insertQuads(ctx, tx, name, quads); err != nil {
		return false, fmt.Errorf("load dataset %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO loads (name, content_hash, quad_count) VALUES (?, ?, ?)",
		name, hash, len(quads)); err != nil {
		return false, fmt.Errorf("load dataset %s: record: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("load dataset %s: commit: %w", name, err)
	}
	return true, nil
}
