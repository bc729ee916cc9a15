package etl

import (
	"context"
	"fmt"
)

// ── Destination ────────────────────────────────────────────
// A Destination writes a table into a target store.
// Implementations live in internal/dbclient, one per driver family.

// SyncMode determines how rows are written to the destination.
type SyncMode string

const (
	SyncReplace SyncMode = "replace" // drop the existing table, recreate, insert
	SyncAppend  SyncMode = "append"  // create if missing, insert without deleting
)

// ParseSyncMode validates a textual mode. Empty selects SyncReplace.
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case "", SyncReplace:
		return SyncReplace, nil
	case SyncAppend:
		return SyncAppend, nil
	default:
		return "", fmt.Errorf("unknown sync mode %q", s)
	}
}

// Destination writes tables to a target system.
type Destination interface {
	// Write persists t under name and returns the number of rows written.
	// Failures wrap ErrStore.
	Write(ctx context.Context, name string, t *Table, mode SyncMode) (int, error)
}
