package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(url string) *Snapshot {
	return &Snapshot{
		URL:       url,
		Title:     "Example Article",
		HTML:      `<html><head><title>Example Article</title></head><body><p>Hello</p></body></html>`,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestCachePutGetRoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("https://example.com/article")
	require.NoError(t, cache.Put(snap))

	got, err := cache.Get("https://example.com/article")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestCacheIgnoresFragment(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cache.Put(testSnapshot("https://example.com/article")))

	got, err := cache.Get("https://example.com/article#sensenote-abc")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/article", got.URL)
}

func TestCacheMiss(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	_, err = cache.Get("https://example.com/unfetched")
	require.ErrorIs(t, err, ErrNotCached)
}

func TestCachePutLeavesNoDebris(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Put(testSnapshot("https://example.com/a")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}

func TestCacheList(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cache.Put(testSnapshot("https://example.com/b")))
	require.NoError(t, cache.Put(testSnapshot("https://example.com/a")))

	snaps, err := cache.List()
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "https://example.com/a", snaps[0].URL)
	assert.Equal(t, "https://example.com/b", snaps[1].URL)
}

func TestSnapshotDocument(t *testing.T) {
	snap := testSnapshot("https://example.com/article#frag")

	doc, err := snap.Document()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/article", doc.Key())
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher(Options{})
	assert.Equal(t, DefaultTimeout, f.timeout)

	f = NewFetcher(Options{Timeout: time.Second})
	assert.Equal(t, time.Second, f.timeout)
}
