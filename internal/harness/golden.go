package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Golden renders the observable part of a result as text. Expectation
// failures are not included; a case that could not be classified shows its
// errors instead of a decision.
func Golden(r *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario: %s\n", r.Scenario)
	fmt.Fprintf(&buf, "pass: %s\n", r.PassID)
	for _, c := range r.Cases {
		fmt.Fprintf(&buf, "\ncase: %s\n", c.Name)
		if c.Decision == nil {
			for _, e := range c.Errors {
				fmt.Fprintf(&buf, "error: %s\n", e)
			}
			continue
		}
		fmt.Fprintf(&buf, "left: %s\n", c.Left)
		fmt.Fprintf(&buf, "right: %s\n", c.Right)
		buf.WriteString(c.Decision.String())
		buf.WriteByte('\n')
		if c.Rewritten != "" {
			fmt.Fprintf(&buf, "rewrite: %s\n", c.Rewritten)
		}
		switch {
		case c.Unsupported:
			buf.WriteString("differential: unsupported\n")
		case c.Comparison == nil:
		case c.Comparison.Same:
			buf.WriteString("differential: same\n")
		default:
			buf.WriteString("differential: differs\n")
		}
	}
	return buf.Bytes()
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<name>.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// WriteGolden writes the golden trace of r to path, creating its directory.
func WriteGolden(path string, r *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, Golden(r), 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the golden file at path matches r.
func CompareGolden(path string, r *Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(want, Golden(r)), nil
}

// RunWithGolden loads and runs a scenario file and compares its trace
// against GoldenPath(scenarioFile).
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenarioFile string) *Result {
	t.Helper()

	s, err := LoadScenario(scenarioFile)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	result, err := Run(context.Background(), s)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	path := GoldenPath(scenarioFile)
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Dir(path)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, strings.TrimSuffix(filepath.Base(path), ".golden"), Golden(result))
	return result
}
