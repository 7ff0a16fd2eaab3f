package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ppc/internal/store"
	"github.com/roach88/ppc/internal/suite"
	"github.com/roach88/ppc/internal/tasks"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Benchmark failure (failed repetitions, output check, time limit)
	ExitCommandError = 2 // Command error (unknown task, unreadable suite, database error, etc.)
)

// Error codes carried in JSON error responses.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeUnknownTask = "E002" // Task not registered
	ErrCodeSuite       = "E003" // Suite file could not be loaded
	ErrCodeDatabase    = "E004" // History database error or no matching run
	ErrCodeMetrics     = "E005" // Metrics textfile error
	ErrCodeBenchFailed = "E006" // One or more benchmark runs failed
	ErrCodeInvalidArgs = "E007" // Flag values out of range
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int         // Exit code (use ExitFailure or ExitCommandError)
	Message string      // Error message
	Err     error       // Underlying error (optional)
	ErrCode string      // JSON error code (optional, see errorCode)
	Details interface{} // JSON error details (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// WithCode sets the JSON error code reported for e.
func (e *ExitError) WithCode(code string) *ExitError {
	e.ErrCode = code
	return e
}

// WithDetails attaches a payload to the JSON error response for e.
func (e *ExitError) WithDetails(details interface{}) *ExitError {
	e.Details = details
	return e
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// JSON reports whether output is machine-readable.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a JSON error response. In text mode it writes nothing; the
// error is printed to stderr by main.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if !f.JSON() {
		return nil
	}
	return json.NewEncoder(f.Writer).Encode(CLIResponse{
		Status: "error",
		Error: &CLIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Fail reports err through Error and returns it unchanged.
func (f *OutputFormatter) Fail(err error) error {
	if err == nil {
		return nil
	}
	var details interface{}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		details = exitErr.Details
	}
	_ = f.Error(errorCode(err), err.Error(), details)
	return err
}

// errorCode picks the JSON error code for err. An explicit ExitError code
// wins; otherwise known sentinels and error types are mapped.
func errorCode(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.ErrCode != "" {
		return exitErr.ErrCode
	}
	var loadErr *suite.LoadError
	switch {
	case errors.Is(err, tasks.ErrUnknownTask):
		return ErrCodeUnknownTask
	case errors.As(err, &loadErr):
		return ErrCodeSuite
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeDatabase
	case errors.Is(err, suite.ErrInvalid):
		return ErrCodeInvalidArgs
	}
	return ErrCodeGeneric
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
