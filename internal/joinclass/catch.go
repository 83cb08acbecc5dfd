package joinclass

import (
	"runtime"

	"github.com/cockroachdb/errors"
)

// CatchDefect converts a value recovered from a classifier panic into an
// error. Call it from a deferred function:
//
//	defer func() {
//		if r := recover(); r != nil {
//			err = joinclass.CatchDefect(r)
//		}
//	}()
//
// Runtime errors (nil dereference, index out of range) become assertion
// failures. A panic value that is not an error is re-raised: it signals a
// fault the process cannot recover from.
func CatchDefect(r any) error {
	err, ok := r.(error)
	if !ok {
		panic(r)
	}
	if errors.HasInterface(err, (*runtime.Error)(nil)) {
		return errors.HandleAsAssertionFailure(err)
	}
	if !errors.IsAssertionFailure(err) {
		return errors.NewAssertionErrorWithWrappedErrf(err, "classifier defect")
	}
	return err
}
