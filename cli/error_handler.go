package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/spellsync/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create a spellsync.yml in your project root.\n")
		return err

	case errors.ErrCodeConfigValidation, errors.ErrCodeConfigInvalid:
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Fix spellsync.yml and try again.\n")
		return err

	case errors.ErrCodeDictionaryNotFound:
		if syncErr, ok := err.(*errors.SyncError); ok {
			fmt.Fprintf(os.Stderr, "❌ Dictionary '%s' is not registered in any folder's settings\n", syncErr.Details["dictionary"])
			fmt.Fprintf(os.Stderr, "Add it under cSpell.customDictionaries or change bidirectional.custom_dictionary.name.\n")
		}
		return err

	case errors.ErrCodeModeDisabled:
		fmt.Fprintf(os.Stderr, "❌ Bidirectional sync is disabled.\n")
		fmt.Fprintf(os.Stderr, "Set bidirectional.mode to 'shortcut' or 'automatic' in spellsync.yml.\n")
		return err

	case errors.ErrCodeParse:
		if syncErr, ok := err.(*errors.SyncError); ok {
			fmt.Fprintf(os.Stderr, "❌ Failed to parse %s\n", syncErr.Details["path"])
		}
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		if h.Verbose {
			if syncErr, ok := err.(*errors.SyncError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", syncErr.ToJSON())
			}
		}
		return err
	}
}
