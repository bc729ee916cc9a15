package etl

import "errors"

// Error taxonomy. Every stage wraps one of these with %w so callers can
// classify a failure with errors.Is.
var (
	// ErrInputMissing is returned when an expected source file does not exist.
	ErrInputMissing = errors.New("input missing")

	// ErrParse covers malformed delimited text and unparseable timestamps.
	ErrParse = errors.New("parse failure")

	// ErrLookup is returned when a required dataset or column is absent.
	ErrLookup = errors.New("lookup failure")

	// ErrStore covers connection and write failures against the destination.
	ErrStore = errors.New("store failure")
)
