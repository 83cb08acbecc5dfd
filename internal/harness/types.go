package harness

import (
	"github.com/roach88/linjoin/internal/eval"
	"github.com/roach88/linjoin/internal/joinclass"
)

// CaseResult is the outcome of one scenario case.
type CaseResult struct {
	Name  string `json:"name"`
	Pass  bool   `json:"pass"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`

	// Decision is nil when the case could not be parsed.
	Decision *joinclass.Decision `json:"decision,omitempty"`

	// Rewritten is the join after one rewrite pass.
	Rewritten string `json:"rewritten,omitempty"`

	// Comparison is set when the scenario has a dataset and both
	// strategies could be evaluated.
	Comparison *eval.Comparison `json:"comparison,omitempty"`

	// Unsupported is set when the dataset could not evaluate the plans.
	Unsupported bool `json:"unsupported,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

func (c *CaseResult) addError(msg string) {
	c.Errors = append(c.Errors, msg)
	c.Pass = false
}

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario string `json:"scenario"`
	PassID   string `json:"pass_id"`

	// Pass is true when every case passed.
	Pass  bool         `json:"pass"`
	Cases []CaseResult `json:"cases"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Cases:    []CaseResult{},
	}
}

// add appends a case result and folds its verdict into the scenario's.
func (r *Result) add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
	}
}

// Errors lists every case error prefixed with the case name.
func (r *Result) Errors() []string {
	var out []string
	for _, c := range r.Cases {
		for _, e := range c.Errors {
			out = append(out, c.Name+": "+e)
		}
	}
	return out
}
