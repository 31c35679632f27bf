package response

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

const guidanceIndent = "   "

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	hintColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
)

// AppError is a failure the CLI reports to the user and exits with.
type AppError struct {
	ExitCode int      // process exit code
	Message  string   // one-line summary
	Guidance []string // remediation steps, printed under "How to fix this"
}

func (e *AppError) Error() string {
	return e.Message
}

// Pre-defined error constructors

func New(exitCode int, msg string, guidance ...string) *AppError {
	return &AppError{ExitCode: exitCode, Message: msg, Guidance: guidance}
}

func NewUsageError(msg string, guidance ...string) *AppError {
	return New(2, msg, guidance...)
}

// ExitCode returns the code carried by err, 1 for any other error and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return 1
}

// --- Terminal helpers ---

// Error prints "❌ Error: msg" followed by the guidance block, if any.
func Error(w io.Writer, msg string, guidance []string) {
	errorColor.Fprintf(w, "❌ Error: %s\n", msg)
	if len(guidance) == 0 {
		return
	}
	hintColor.Fprintln(w, "\n💡 How to fix this:")
	printGuidance(w, guidance)
}

// Fail prints err; an *AppError contributes its guidance.
func Fail(w io.Writer, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		Error(w, appErr.Message, appErr.Guidance)
		return
	}
	Error(w, err.Error(), nil)
}

// Invalid prints an inline input problem, used while re-prompting.
func Invalid(w io.Writer, msg string, guidance []string) {
	errorColor.Fprintf(w, "❌ %s\n", msg)
	printGuidance(w, guidance)
}

func Warning(w io.Writer, msg string) {
	warningColor.Fprintf(w, "⚠️  Warning: %s\n", msg)
}

func Info(w io.Writer, msg string) {
	fmt.Fprintf(w, "ℹ️  %s\n", msg)
}

func Success(w io.Writer, msg string) {
	successColor.Fprintln(w, msg)
}

func printGuidance(w io.Writer, guidance []string) {
	for _, line := range guidance {
		fmt.Fprintf(w, "%s%s\n", guidanceIndent, line)
	}
}
