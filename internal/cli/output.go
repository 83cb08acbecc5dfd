package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a check failed: scenario mismatch, diverging accepted join, evaluation error
	ExitCommandError = 2 // the command could not run: bad flags, unreadable plan or dataset
)

// Error codes carried in CLIError.Code and in ExitError messages.
const (
	ErrCodeGeneric    = "E001"
	ErrCodeParse      = "E002" // plan text is not valid SSE
	ErrCodeRead       = "E003" // plan or scenario file unreadable
	ErrCodeDataset    = "E004" // dataset fails to load or validate
	ErrCodeNotFound   = "E005" // named file or directory missing
	ErrCodeEval       = "E006" // plan cannot be evaluated
	ErrCodeDefect     = "E007" // plan outside the algebra vocabulary
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// ExitError makes a command exit with Code. main prints nothing extra for
// it: the command has already reported the failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps a command error to a process exit code. Errors that
// carry no ExitError are failures.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope of every JSON document a command prints.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`

	// PassID names the rewrite pass that produced Data, if any.
	PassID string `json:"pass_id,omitempty"`
}

// CLIError describes a failed command in a JSON response.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OutputFormatter prints command results as text or JSON. Results go to
// Writer; verbose diagnostics go to ErrWriter so JSON stays parseable.
type OutputFormatter struct {
	Format    string // "text" or "json"
	Writer    io.Writer
	ErrWriter io.Writer // nil means Writer
	Verbose   bool
}

// Success prints data: as an "ok" response in JSON, with fmt's default
// formatting in text.
func (f *OutputFormatter) Success(data interface{}) error {
	return f.SuccessWithPass("", data)
}

// SuccessWithPass is Success with a rewrite pass ID in the JSON response.
// Text output does not show the pass ID.
func (f *OutputFormatter) SuccessWithPass(passID string, data interface{}) error {
	if f.Format != "json" {
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	return f.encode(CLIResponse{Status: "ok", Data: data, PassID: passID})
}

// Error prints a failure with its error code.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format != "json" {
		_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
		return err
	}
	return f.encode(CLIResponse{
		Status: "error",
		Error:  &CLIError{Code: code, Message: message},
	})
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// VerboseLog prints a diagnostic line when Verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
