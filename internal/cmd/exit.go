package cmd

import (
	"fmt"
	"io"

	"github.com/Iron-Ham/pcsplit/internal/errors"
)

// Exit statuses returned by ReportError.
const (
	ExitOK       = 0
	ExitFailure  = 1 // input, partition and unexpected errors
	ExitWarning  = 2 // nothing to act on: missing runs, invalid flags
	ExitCritical = 3 // inputs contradict each other
)

// ReportError writes err to w and returns the process exit status.
// User-facing errors are prefixed with their severity; anything else is
// reported as a plain error.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	if !errors.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return ExitFailure
	}

	sev := errors.GetSeverity(err)
	fmt.Fprintf(w, "%s: %v\n", sev, err)
	switch {
	case errors.IsFatal(err):
		return ExitCritical
	case sev <= errors.SeverityWarning:
		return ExitWarning
	default:
		return ExitFailure
	}
}
