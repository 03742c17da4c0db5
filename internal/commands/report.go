package commands

import (
	"fmt"
	"io"

	"apitools/internal/exitcode"
)

// UsageError prints the usage line of cmd and returns UserError.
func UsageError(errOut io.Writer, usage string) int {
	fmt.Fprintf(errOut, "error: usage: %s\n", usage)
	return exitcode.UserError
}

// UserError prints "error: msg" and returns UserError.
func UserError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// BackendError prints a failed remote call and returns BackendError.
func BackendError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
