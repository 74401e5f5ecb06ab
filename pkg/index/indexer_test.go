package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hexilee/sgrep/pkg/collect"
)

func newTestIndexer(t *testing.T) (*Store, *Indexer) {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "idx"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg, err := collect.NewBuilder().Register(collect.NewText()).Build()
	require.NoError(t, err)

	return store, New(store, reg)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestIndexer_Index_AddsNewPaths(t *testing.T) {
	dir := t.TempDir()
	store, ix := newTestIndexer(t)

	path := writeFile(t, dir, "a.txt", "hello world\n")

	result, err := ix.Index(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)
	assert.Equal(t, 0, result.Skipped)

	count, err := store.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndexer_Index_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	_, ix := newTestIndexer(t)

	path := writeFile(t, dir, "a.txt", "hello world\n")

	_, err := ix.Index(context.Background(), []string{path})
	require.NoError(t, err)

	result, err := ix.Index(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Indexed)
	assert.Equal(t, 1, result.Skipped)
}

func TestIndexer_Index_ReplacesChangedContent(t *testing.T) {
	dir := t.TempDir()
	store, ix := newTestIndexer(t)

	path := writeFile(t, dir, "a.txt", "hello world\n")

	_, err := ix.Index(context.Background(), []string{path})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("goodbye world\n"), 0o600))

	result, err := ix.Index(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)

	count, err := store.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndexer_Index_SkipsUncollectablePaths(t *testing.T) {
	dir := t.TempDir()
	_, ix := newTestIndexer(t)

	path := writeFile(t, dir, "a.bin", string([]byte{0xFF, 0xFE, 0x00}))

	result, err := ix.Index(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Indexed)
	assert.Equal(t, 1, result.Skipped)
}

func TestIndexer_Remove(t *testing.T) {
	dir := t.TempDir()
	store, ix := newTestIndexer(t)

	path := writeFile(t, dir, "a.txt", "hello world\n")

	_, err := ix.Index(context.Background(), []string{path})
	require.NoError(t, err)

	removed, err := ix.Remove([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := store.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexer_Remove_IgnoresUnindexedPaths(t *testing.T) {
	_, ix := newTestIndexer(t)

	removed, err := ix.Remove([]string{"/never/indexed.txt"})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestIndexer_RemoveAll(t *testing.T) {
	dir := t.TempDir()
	store, ix := newTestIndexer(t)

	a := writeFile(t, dir, "a.txt", "hello\n")
	b := writeFile(t, dir, "b.txt", "world\n")

	_, err := ix.Index(context.Background(), []string{a, b})
	require.NoError(t, err)

	require.NoError(t, ix.RemoveAll())

	count, err := store.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
