package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linjoin/internal/joinclass"
)

// Scenario is a named set of join sites with expected verdicts.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is an optional path to a .cue dataset. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Dataset string `yaml:"dataset,omitempty"`

	// PassID fixes the rewrite pass ID. Empty means "test-pass-default".
	PassID string `yaml:"pass_id,omitempty"`

	Cases []Case `yaml:"cases"`
}

// Case is one join site: (join left right).
type Case struct {
	Name  string `yaml:"name"`
	Left  string `yaml:"left"`
	Right string `yaml:"right"`

	// Expect is the expected verdict: true for linear.
	Expect *bool `yaml:"expect"`

	// Rule is the expected rejecting rule name. Only valid with
	// expect: false.
	Rule string `yaml:"rule,omitempty"`

	// Same is the expected differential outcome. Requires a dataset.
	Same *bool `yaml:"same,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if s.Dataset != "" && !filepath.IsAbs(s.Dataset) {
		s.Dataset = filepath.Join(filepath.Dir(path), s.Dataset)
	}
	if s.Dataset != "" {
		if _, err := os.Stat(s.Dataset); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: dataset file not found: %s", s.Dataset)
		}
	}
	return s, nil
}

// ParseScenario decodes scenario YAML. Dataset paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted. A
// non-empty filter is matched against file names without extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(i, &c, s.Dataset != ""); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func validateCase(index int, c *Case, hasDataset bool) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}
	if c.Left == "" {
		return fmt.Errorf("cases[%d]: left is required", index)
	}
	if c.Right == "" {
		return fmt.Errorf("cases[%d]: right is required", index)
	}
	if c.Expect == nil {
		return fmt.Errorf("cases[%d]: expect is required", index)
	}
	if c.Rule != "" {
		if *c.Expect {
			return fmt.Errorf("cases[%d]: rule is only valid with expect: false", index)
		}
		if _, err := joinclass.ParseRule(c.Rule); err != nil {
			return fmt.Errorf("cases[%d]: %w", index, err)
		}
	}
	if c.Same != nil && !hasDataset {
		return fmt.Errorf("cases[%d]: same requires a dataset", index)
	}
	return nil
}
