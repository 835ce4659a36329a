package failfast

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"nexttools/internal/gtg"
)

// Exit codes shared by every binary in the module.
const (
	CodeOK      = 0
	CodeFailure = 1
	CodeUsage   = 2
)

// UsageError marks errors caused by bad input rather than a failing remote.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// Usage wraps err so ExitCode maps it to CodeUsage.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// Usagef is Usage(fmt.Errorf(...)).
func Usagef(format string, args ...any) error {
	return Usage(fmt.Errorf(format, args...))
}

// ExitCode maps an error onto a process exit status.
func ExitCode(err error) int {
	var usage *UsageError
	switch {
	case err == nil:
		return CodeOK
	case errors.As(err, &usage), errors.Is(err, gtg.ErrInvalidTarget):
		return CodeUsage
	default:
		return CodeFailure
	}
}

var errorColor = color.New(color.FgRed, color.Bold)

// Report prints err to w and returns its exit code.
func Report(w io.Writer, err error) int {
	code := ExitCode(err)
	if code != CodeOK {
		errorColor.Fprintf(w, "✗ %v\n", err)
	}
	return code
}
