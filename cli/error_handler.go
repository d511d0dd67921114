package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/lookout/errors"
)

// ErrorHandler provides user-friendly error messages.
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type.
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create a lookout.yml in your repository root.\n")
		return err

	case errors.ErrCodeRootNotRepo:
		if lkErr, ok := err.(*errors.LookoutError); ok {
			fmt.Fprintf(os.Stderr, "❌ '%s' is not inside a git repository\n", lkErr.Details["root"])
			fmt.Fprintf(os.Stderr, "lookout falls back to raw filesystem watching only when include patterns are configured.\n")
		}
		return err

	case errors.ErrCodeRootAlreadyWatched:
		if lkErr, ok := err.(*errors.LookoutError); ok {
			fmt.Fprintf(os.Stderr, "❌ Root '%s' is already being watched\n", lkErr.Details["root"])
		}
		return err

	case errors.ErrCodeGitNotInstalled, errors.ErrCodeCommandNotFound:
		fmt.Fprintf(os.Stderr, "❌ Required command not found. Make sure git is installed and on your PATH.\n")
		return err

	case errors.ErrCodeWatchInit:
		if lkErr, ok := err.(*errors.LookoutError); ok {
			fmt.Fprintf(os.Stderr, "❌ Failed to start watching '%s'\n", lkErr.Details["root"])
			fmt.Fprintf(os.Stderr, "Check that the path exists and is readable.\n")
		}
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		if h.Verbose {
			if lkErr, ok := err.(*errors.LookoutError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", lkErr.ToJSON())
			}
		}
		return err
	}
}
