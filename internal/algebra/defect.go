package algebra

import (
	"github.com/cockroachdb/errors"
)

// Unhandled reports an operator or expression outside the closed vocabulary.
// Callers panic with the returned error: such a value can only come from a
// broken upstream compiler, and guessing a default would hide the bug.
func Unhandled(v any) error {
	return errors.AssertionFailedf("unhandled algebra value %T", v)
}
