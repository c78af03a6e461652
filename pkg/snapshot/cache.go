package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sensenote/sensenote/pkg/document"
)

// ErrNotCached means no snapshot exists for the requested address.
var ErrNotCached = errors.New("snapshot: page not cached")

// Cache stores snapshots as JSON files under one directory, keyed by the
// document key so two addresses differing only in fragment share an entry.
type Cache struct {
	dir string
}

// NewCache opens (creating if needed) the cache directory.
func NewCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("snapshot: cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Put writes snap, replacing any previous snapshot of the same document.
// The write is atomic: a temp file is renamed into place.
func (c *Cache) Put(snap *Snapshot) error {
	path, err := c.Path(snap.URL)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Get returns the cached snapshot for rawURL.
func (c *Cache) Get(rawURL string) (*Snapshot, error) {
	path, err := c.Path(rawURL)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// List returns every cached snapshot ordered by URL.
func (c *Cache) List() ([]*Snapshot, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	var snaps []*Snapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", entry.Name(), err)
		}
		snaps = append(snaps, &snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].URL < snaps[j].URL })
	return snaps, nil
}

// Path returns the file a snapshot of rawURL lives at.
func (c *Cache) Path(rawURL string) (string, error) {
	key, err := document.Key(rawURL)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:8])+".json"), nil
}
