package harness

import (
	"fmt"
	"strconv"
)

// Check names.
const (
	CheckVerdict      = "verdict"
	CheckRule         = "rule"
	CheckDifferential = "differential"
	CheckSame         = "same"
)

// AssertionError is returned when a case check fails.
type AssertionError struct {
	Check    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// checkCase compares a classified case against its expectations.
// cr.Decision must be set.
func checkCase(cr *CaseResult, c Case) []*AssertionError {
	var errs []*AssertionError
	d := cr.Decision

	if *c.Expect != d.Linear {
		errs = append(errs, &AssertionError{
			Check:    CheckVerdict,
			Expected: verdict(*c.Expect),
			Actual:   verdict(d.Linear),
		})
	}

	if c.Rule != "" && c.Rule != d.Rule.String() {
		errs = append(errs, &AssertionError{
			Check:    CheckRule,
			Expected: c.Rule,
			Actual:   d.Rule.String(),
		})
	}

	if cmp := cr.Comparison; cmp != nil && d.Linear && !cmp.Same {
		errs = append(errs, &AssertionError{
			Check:    CheckDifferential,
			Expected: "same solutions for an accepted join",
			Actual:   fmt.Sprintf("join=%d sequence=%d", len(cmp.Join), len(cmp.Sequence)),
		})
	}

	if c.Same != nil {
		actual := "unavailable"
		if cr.Comparison != nil {
			actual = strconv.FormatBool(cr.Comparison.Same)
		}
		if actual != strconv.FormatBool(*c.Same) {
			errs = append(errs, &AssertionError{
				Check:    CheckSame,
				Expected: strconv.FormatBool(*c.Same),
				Actual:   actual,
			})
		}
	}
	return errs
}

func verdict(linear bool) string {
	if linear {
		return "linear"
	}
	return "reject"
}
