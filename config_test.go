package xlsxreader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaultsFillsZeroValue(t *testing.T) {
	merged := withDefaults(Config{})
	assert.Equal(t, SkipEmptyNone, merged.SkipEmptyCells)
	assert.Equal(t, SkipEmptyNone, merged.SkipEmptyRows)
	assert.True(t, merged.SharedStrings.UseCache)
	assert.Equal(t, FlagHugeDocument, merged.XMLParserFlags)
}

func TestWithDefaultsPreservesCallerOverrides(t *testing.T) {
	merged := withDefaults(Config{
		SkipEmptyCells: SkipEmptyAll,
		SharedStrings:  SharedStringsConfig{UseCache: false, CacheBytesKB: 64, UseSpill: true, SpillEntriesPerFile: 10, KeepHandles: false},
	})
	assert.Equal(t, SkipEmptyAll, merged.SkipEmptyCells)
	assert.False(t, merged.SharedStrings.UseCache)
	assert.Equal(t, 64, merged.SharedStrings.CacheBytesKB)
}

func TestWithDefaultsDeepCopiesCustomFormats(t *testing.T) {
	src := map[int]string{200: "0.00"}
	merged := withDefaults(Config{CustomFormats: src})
	src[200] = "mutated"
	assert.Equal(t, "0.00", merged.CustomFormats[200])
}

func TestConfigValidateRejectsBadSkipEmptyCells(t *testing.T) {
	err := Config{SkipEmptyCells: "bogus"}.Validate()
	require.Error(t, err)
	var target *ErrConfig
	assert.ErrorAs(t, err, &target)
}

func TestConfigValidateRejectsTooSmallCacheBudget(t *testing.T) {
	err := Config{SharedStrings: SharedStringsConfig{CacheBytesKB: 1}}.Validate()
	require.Error(t, err)
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	doc := "skip_empty_cells: all\nshared_strings:\n  use_cache: false\n  cache_bytes_kb: 32\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SkipEmptyAll, cfg.SkipEmptyCells)
	assert.False(t, cfg.SharedStrings.UseCache)
	assert.Equal(t, 32, cfg.SharedStrings.CacheBytesKB)
	// untouched fields still receive defaults
	assert.Equal(t, FlagHugeDocument, cfg.XMLParserFlags)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/cfg.yaml")
	require.Error(t, err)
	var target *ErrFileNotFound
	assert.ErrorAs(t, err, &target)
}
