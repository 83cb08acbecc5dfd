package dataset

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// Dataset is a decoded dataset file.
type Dataset struct {
	// Name is the declared name, or the file name without extension.
	Name  string
	Path  string
	Quads []ir.Quad
}

// Hash returns the content hash of the quads (ir.DatasetHash).
func (d *Dataset) Hash() string {
	return ir.DatasetHash(d.Quads)
}

// LoadError reports a dataset that failed to load or validate.
type LoadError struct {
	// Field is the dataset path of the offending value, e.g. "quads[2].s".
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&sb, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Field != "" {
		sb.WriteString(e.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// LoadFile reads and decodes one dataset file.
func LoadFile(path string) (*Dataset, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	ds, err := Parse(path, src)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// LoadDir loads every .cue file under dir, sorted by path. Each file is
// its own dataset.
func LoadDir(dir string) ([]*Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset directory: not a directory: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dataset directory: %w", err)
	}
	sort.Strings(files)

	out := make([]*Dataset, 0, len(files))
	for _, f := range files {
		ds, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// Parse decodes dataset source. filename is used for positions and as the
// default name.
func Parse(filename string, src []byte) (*Dataset, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile dataset schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v := schema.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	ds := &Dataset{
		Name: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Path: filename,
	}
	if nameVal := v.LookupPath(cue.ParsePath("dataset.name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		ds.Name = name
	}

	iter, err := v.LookupPath(cue.ParsePath("dataset.quads")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		q, err := decodeQuad(iter.Value(), fmt.Sprintf("quads[%d]", i))
		if err != nil {
			return nil, err
		}
		ds.Quads = append(ds.Quads, q)
	}
	return ds, nil
}

func decodeQuad(v cue.Value, field string) (ir.Quad, error) {
	var q ir.Quad
	var err error
	if q.S, err = decodeIRI(v, field, "s"); err != nil {
		return q, err
	}
	if q.P, err = decodeIRI(v, field, "p"); err != nil {
		return q, err
	}
	if q.O, err = decodeObject(v.LookupPath(cue.ParsePath("o")), field+".o"); err != nil {
		return q, err
	}
	if g := v.LookupPath(cue.ParsePath("g")); g.Exists() {
		if q.G, err = decodeIRI(v, field, "g"); err != nil {
			return q, err
		}
	}
	return q, nil
}

func decodeIRI(quad cue.Value, field, pos string) (ir.Term, error) {
	v := quad.LookupPath(cue.ParsePath(pos))
	t, err := decodeTerm(v, field+"."+pos)
	if err != nil {
		return nil, err
	}
	if _, ok := t.(ir.IRI); !ok {
		return nil, &LoadError{
			Field:   field + "." + pos,
			Message: fmt.Sprintf("expected an IRI, got %s", ir.CanonicalTerm(t)),
			Pos:     v.Pos(),
		}
	}
	return t, nil
}

func decodeObject(v cue.Value, field string) (ir.Term, error) {
	switch v.Kind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, &LoadError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return ir.Int(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil
	default:
		return decodeTerm(v, field)
	}
}

// decodeTerm parses an SSE term string. Variables are rejected.
func decodeTerm(v cue.Value, field string) (ir.Term, error) {
	s, err := v.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	t, err := algebra.ParseTerm(s)
	if err != nil {
		return nil, &LoadError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	if !ir.IsConcrete(t) {
		return nil, &LoadError{Field: field, Message: fmt.Sprintf("variable %s in data", t), Pos: v.Pos()}
	}
	return t, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	if path := first.Path(); len(path) > 0 {
		le.Field = strings.Join(path, ".")
	}
	return le
}
