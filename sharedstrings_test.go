package xlsxreader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSharedStrings(t *testing.T, values []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sharedStrings.xml")

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&sb, `<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`, len(values), len(values))
	for _, v := range values {
		fmt.Fprintf(&sb, `<si><t>%s</t></si>`, v)
	}
	sb.WriteString(`</sst>`)
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func newSpillDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "spill")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestSharedStringStoreCacheOnly(t *testing.T) {
	values := []string{"alpha", "bravo", "charlie"}
	path := writeSharedStrings(t, values)
	store, err := NewSharedStringStore(path, newSpillDir(t), SharedStringsConfig{
		UseCache:     true,
		CacheBytesKB: 16 * 1024,
	})
	require.NoError(t, err)
	defer store.Close()

	for i, v := range values {
		assert.Equal(t, v, store.Lookup(i))
	}
}

func TestSharedStringStoreOutOfRangeIsEmpty(t *testing.T) {
	path := writeSharedStrings(t, []string{"only"})
	store, err := NewSharedStringStore(path, newSpillDir(t), SharedStringsConfig{UseCache: true, CacheBytesKB: 1024})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "", store.Lookup(5))
	assert.Equal(t, "", store.Lookup(-1))
}

func TestSharedStringStoreSpillFallback(t *testing.T) {
	values := make([]string, 200)
	for i := range values {
		values[i] = fmt.Sprintf("entry-%d", i)
	}
	path := writeSharedStrings(t, values)
	// the smallest allowed cache budget (8 KiB) sends the later entries into
	// spill files; every index must be retrievable whichever stratum holds it.
	store, err := NewSharedStringStore(path, newSpillDir(t), SharedStringsConfig{
		UseCache:            true,
		CacheBytesKB:        8,
		UseSpill:            true,
		SpillEntriesPerFile: 20,
		KeepHandles:         false,
	})
	require.NoError(t, err)
	defer store.Close()

	for i, v := range values {
		assert.Equal(t, v, store.Lookup(i), "index %d", i)
	}
}

func TestSharedStringStoreSpillWithKeptHandles(t *testing.T) {
	values := make([]string, 50)
	for i := range values {
		values[i] = fmt.Sprintf("item-%d", i)
	}
	path := writeSharedStrings(t, values)
	store, err := NewSharedStringStore(path, newSpillDir(t), SharedStringsConfig{
		UseCache:            true,
		CacheBytesKB:        8,
		UseSpill:            true,
		SpillEntriesPerFile: 10,
		KeepHandles:         true,
	})
	require.NoError(t, err)
	defer store.Close()

	// looked up out of order, to exercise both forward reads and
	// re-opening a handle when the cursor has to rewind.
	for _, i := range []int{49, 0, 25, 5, 48} {
		assert.Equal(t, values[i], store.Lookup(i))
	}
}

func TestSharedStringStoreMissingPartDegradesGracefully(t *testing.T) {
	store, err := NewSharedStringStore(filepath.Join(t.TempDir(), "missing.xml"), newSpillDir(t), SharedStringsConfig{UseCache: true, CacheBytesKB: 1024})
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, "", store.Lookup(0))
}

func TestSharedStringStoreLargeDocument(t *testing.T) {
	const n = 25005
	values := make([]string, n)
	for i := range values {
		values[i] = fmt.Sprintf("s%d", i)
	}
	path := writeSharedStrings(t, values)
	store, err := NewSharedStringStore(path, newSpillDir(t), SharedStringsConfig{
		UseCache:            true,
		CacheBytesKB:        64, // small budget: cache fills quickly, rest spills
		UseSpill:            true,
		SpillEntriesPerFile: 5000,
		KeepHandles:         true,
	})
	require.NoError(t, err)
	defer store.Close()

	for _, i := range []int{0, 1, 4999, 5000, 12345, n - 1} {
		assert.Equal(t, values[i], store.Lookup(i), "index %d", i)
	}
}
