package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/linjoin/internal/algebra"
)

// PlanError reports a plan argument that could not be read or parsed.
type PlanError struct {
	Code    string
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// readPlan parses a plan argument. "@path" reads the SSE text from path;
// anything else is the SSE text itself.
func readPlan(arg string) (algebra.Node, error) {
	src := arg
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			code := ErrCodeRead
			if os.IsNotExist(err) {
				code = ErrCodeNotFound
			}
			return nil, &PlanError{Code: code, Message: fmt.Sprintf("read plan %s: %v", path, err)}
		}
		src = string(data)
	}
	n, err := algebra.Parse(src)
	if err != nil {
		return nil, &PlanError{Code: ErrCodeParse, Message: fmt.Sprintf("parse plan: %v", err)}
	}
	return n, nil
}

// readPlans parses every argument, stopping at the first failure.
func readPlans(args []string) ([]algebra.Node, error) {
	nodes := make([]algebra.Node, len(args))
	for i, arg := range args {
		n, err := readPlan(arg)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

// planFailure reports a readPlans error as a command error.
func planFailure(f *OutputFormatter, err error) error {
	var pe *PlanError
	if errors.As(err, &pe) {
		return commandError(f, ExitCommandError, pe.Code, pe.Message)
	}
	return commandError(f, ExitCommandError, ErrCodeGeneric, err.Error())
}
