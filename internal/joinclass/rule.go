package joinclass

import (
	"fmt"
	"strings"

	"github.com/roach88/linjoin/internal/ir"
)

// Rule names one check of the decision procedure.
type Rule int

const (
	RuleNone Rule = iota
	RuleNegation
	RuleModifier
	RuleTableTable
	RuleFilterOnly
	RuleOptional
	RuleFilterScope
	RuleAssignScope
)

var ruleNames = [...]string{
	RuleNone:        "none",
	RuleNegation:    "negation",
	RuleModifier:    "modifier",
	RuleTableTable:  "table-table",
	RuleFilterOnly:  "filter-only",
	RuleOptional:    "optional",
	RuleFilterScope: "filter-scope",
	RuleAssignScope: "assign-scope",
}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return fmt.Sprintf("rule(%d)", int(r))
	}
	return ruleNames[r]
}

// MarshalText encodes the rule by name.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rule name.
func (r *Rule) UnmarshalText(text []byte) error {
	parsed, err := ParseRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRule maps a rule name back to its Rule.
func ParseRule(name string) (Rule, error) {
	for i, n := range ruleNames {
		if n == name {
			return Rule(i), nil
		}
	}
	return RuleNone, fmt.Errorf("unknown rule %q (want one of %s)", name, strings.Join(ruleNames[1:], ", "))
}

// Step is the outcome of one rule for one classification.
type Step struct {
	Rule   Rule   `json:"rule"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

func (s Step) String() string {
	verdict := "reject"
	if s.Passed {
		verdict = "pass"
	}
	out := s.Rule.String() + ": " + verdict
	if s.Detail != "" {
		out += " " + s.Detail
	}
	return out
}

// CheckSets are the normalized variable sets the scope rules compare.
type CheckSets struct {
	LeftFixed       ir.VarSet `json:"left_fixed"`
	LeftOpt         ir.VarSet `json:"left_opt"`
	RightFixed      ir.VarSet `json:"right_fixed"`
	RightOpt        ir.VarSet `json:"right_opt"`
	RightFilter     ir.VarSet `json:"right_filter"`
	RightFilterOnly ir.VarSet `json:"right_filter_only"`
	RightAssign     ir.VarSet `json:"right_assign"`
}

func (c CheckSets) String() string {
	var sb strings.Builder
	for i, line := range [][2]string{
		{"left fixed", c.LeftFixed.String()},
		{"left opt", c.LeftOpt.String()},
		{"right fixed", c.RightFixed.String()},
		{"right opt", c.RightOpt.String()},
		{"right filter", c.RightFilter.String()},
		{"right filter-only", c.RightFilterOnly.String()},
		{"right assign", c.RightAssign.String()},
	} {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line[0] + ": " + line[1])
	}
	return sb.String()
}

// Decision is the full record of one classification.
type Decision struct {
	Linear bool `json:"linear"`
	// Rule is the rejecting rule, RuleNone when accepted.
	Rule Rule `json:"rule"`
	// LeftKind and RightKind are the resolved top-level operators; empty
	// when the negation guard rejected before resolution.
	LeftKind  string     `json:"left_kind,omitempty"`
	RightKind string     `json:"right_kind,omitempty"`
	Sets      *CheckSets `json:"sets,omitempty"`
	Steps     []Step     `json:"steps"`
}

// String renders one step per line followed by the verdict.
func (d Decision) String() string {
	var sb strings.Builder
	for _, s := range d.Steps {
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	if d.Linear {
		sb.WriteString("result: linear")
	} else {
		sb.WriteString("result: reject (" + d.Rule.String() + ")")
	}
	return sb.String()
}
