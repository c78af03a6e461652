package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sensenote/sensenote/pkg/anchor"
)

// FileStore persists the collection as one JSON array on disk. Writes go
// through a temporary file and an atomic rename so readers never observe a
// half-written collection. A missing file reads as an empty collection.
type FileStore struct {
	path string
}

// NewFileStore opens a file store at path, creating parent directories as
// needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("store: init directory for %s: %w", path, err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Load(_ context.Context) ([]*anchor.Anchor, error) {
	b, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", fs.path, err)
	}
	var out []*anchor.Anchor
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", fs.path, err)
	}
	return out, nil
}

func (fs *FileStore) Save(_ context.Context, anchors []*anchor.Anchor) error {
	if anchors == nil {
		anchors = []*anchor.Anchor{}
	}
	b, err := json.MarshalIndent(anchors, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("store: atomic rename %s: %w", fs.path, err)
	}
	return nil
}
