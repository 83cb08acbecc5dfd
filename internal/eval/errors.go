package eval

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/roach88/linjoin/internal/algebra"
)

// ErrUnsupported matches every unsupported-operator EvalError under
// errors.Is.
var ErrUnsupported = errors.New("unsupported operator")

// EvalError represents a condition that stops evaluation of a plan.
type EvalError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Kind is the operator being evaluated when the error occurred.
	Kind algebra.Kind

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeUnsupported indicates an operator with no local meaning.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"

	// ErrCodeSolutionLimit indicates an intermediate result grew past the
	// configured maximum.
	ErrCodeSolutionLimit ErrorCode = "SOLUTION_LIMIT"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Kind)
}

// Is lets errors.Is(err, ErrUnsupported) match by code.
func (e *EvalError) Is(target error) bool {
	return target == ErrUnsupported && e.Code == ErrCodeUnsupported
}

// IsUnsupported reports whether err is an unsupported-operator error.
func IsUnsupported(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnsupported
	}
	return false
}

// IsLimitError reports whether err is a solution-limit error.
func IsLimitError(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeSolutionLimit
	}
	return false
}

func newUnsupported(n algebra.Node) *EvalError {
	msg := "operator has no local evaluation"
	if ext, ok := n.(*algebra.Ext); ok {
		msg = fmt.Sprintf("opaque extension %q", ext.Name)
	}
	return &EvalError{
		Code:    ErrCodeUnsupported,
		Message: msg,
		Kind:    n.Kind(),
	}
}

func newLimitError(kind algebra.Kind, count, limit int) *EvalError {
	return &EvalError{
		Code:    ErrCodeSolutionLimit,
		Message: fmt.Sprintf("intermediate result exceeded limit (%d > %d)", count, limit),
		Kind:    kind,
		Details: map[string]string{
			"solutions": fmt.Sprintf("%d", count),
			"limit":     fmt.Sprintf("%d", limit),
		},
	}
}

// exprError is an expression-level error. It never escapes the package.
type exprError struct {
	msg string
}

func (e *exprError) Error() string { return e.msg }

func exprErrorf(format string, args ...any) error {
	return &exprError{msg: fmt.Sprintf(format, args...)}
}

func isExprError(err error) bool {
	var ee *exprError
	return errors.As(err, &ee)
}
