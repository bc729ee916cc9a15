package cli

import (
	"errors"
	"strings"

	"github.com/nandonunes77/pipeline-etl-olist/internal/config"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
	"github.com/nandonunes77/pipeline-etl-olist/internal/service"
)

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess      = 0  // Pipeline completed successfully
	ExitGeneralError = 1  // Unknown or unclassified error
	ExitUsageError   = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic        = 3  // Internal panic (unexpected crash)
	ExitConfigError  = 10 // Invalid configuration
	ExitInputMissing = 20 // An input dataset file was not found
	ExitParseError   = 21 // Malformed CSV or timestamp
	ExitLookupError  = 22 // Required dataset or column absent
	ExitStoreError   = 23 // Destination store unreachable or write failed
)

var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess for nil errors, semantic codes for known errors,
// and ExitGeneralError for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, service.ErrHistoryDisabled):
		return ExitConfigError
	case errors.Is(err, etl.ErrInputMissing):
		return ExitInputMissing
	case errors.Is(err, etl.ErrParse):
		return ExitParseError
	case errors.Is(err, etl.ErrLookup):
		return ExitLookupError
	case errors.Is(err, etl.ErrStore):
		return ExitStoreError
	}

	msg := err.Error()
	for _, p := range usagePatterns {
		if strings.Contains(msg, p) {
			return ExitUsageError
		}
	}
	return ExitGeneralError
}
