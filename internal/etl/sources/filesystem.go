package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// ── File Source ─────────────────────────────────────────────
// Reads files from a local directory.

// TypeFile is the registry key of the local directory source.
const TypeFile = "file"

func init() {
	etl.RegisterSource(etl.SourceSpec{
		Type:  TypeFile,
		Label: "Local directory",
		ConfigFields: []etl.ConfigField{
			{Key: "dir", Label: "Directory", Required: true, Default: "data", Help: "Directory holding the CSV files"},
		},
	}, func(_ context.Context, cfg etl.SourceConfig) (etl.Source, error) {
		dir, _ := cfg["dir"].(string)
		if dir == "" {
			return nil, fmt.Errorf("dir is required")
		}
		return NewFileSource(dir), nil
	})
}

// FileSource opens files under a directory.
type FileSource struct {
	dir string
}

// NewFileSource returns a source rooted at dir. The directory is not
// checked until a file is opened.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{Type: TypeFile, Label: "Local directory"}
}

func (s *FileSource) Location() string { return s.dir }

func (s *FileSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", etl.ErrInputMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}
