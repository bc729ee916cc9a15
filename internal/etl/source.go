package etl

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// ── Source ──────────────────────────────────────────────────
// A Source gives access to the raw files of one data location.
// Implementations live in etl/sources/, one file per source type.

// SourceConfig is an opaque configuration map parsed per source type.
type SourceConfig map[string]any

// ConfigField describes a single configuration input for a source.
type ConfigField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
	Help     string `json:"help,omitempty"`
}

// SourceSpec describes a source type and the config keys it understands.
type SourceSpec struct {
	Type         string        `json:"type"`
	Label        string        `json:"label"`
	ConfigFields []ConfigField `json:"configFields"`
}

// Source opens named files from a data location.
type Source interface {
	// Spec returns metadata about this source type.
	Spec() SourceSpec

	// Open returns a reader for the named file. A missing file must be
	// reported with an error wrapping ErrInputMissing.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Location describes where files are read from, for progress output.
	Location() string
}

// SourceFactory builds a Source from its configuration.
type SourceFactory func(ctx context.Context, cfg SourceConfig) (Source, error)

// ── Source Registry ────────────────────────────────────────
// Compile-time registration via init() in each source file.

type registration struct {
	spec    SourceSpec
	factory SourceFactory
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registration{}
)

// RegisterSource registers a source factory under its spec type.
// Called from init() in each source implementation file.
func RegisterSource(spec SourceSpec, factory SourceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[spec.Type] = registration{spec: spec, factory: factory}
}

// NewSource builds a registered source by type.
func NewSource(ctx context.Context, typ string, cfg SourceConfig) (Source, error) {
	registryMu.RLock()
	reg, ok := registry[typ]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown source type: %q", typ)
	}
	return reg.factory(ctx, cfg)
}

// ListSources returns the specs of all registered sources, sorted by type.
func ListSources() []SourceSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]SourceSpec, 0, len(registry))
	for _, r := range registry {
		specs = append(specs, r.spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}
