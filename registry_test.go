package xlsxreader

import (
	"testing"

	"github.com/AsperaGmbH/xlsx-reader/internal/numfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRegistryBuiltinLookup(t *testing.T) {
	r := NewFormatRegistry(nil, []int{1}, nil, DefaultConfig())
	out, err := r.TryFormat("1234.5", numfmt.RawNumber, 0)
	require.NoError(t, err)
	assert.Equal(t, "1235", out) // builtin id 1 is "0"
}

func TestFormatRegistryOverridesBeatDocument(t *testing.T) {
	document := map[int]string{200: "0.00"}
	overrides := map[int]string{200: "0.000"}
	r := NewFormatRegistry(document, []int{200}, overrides, DefaultConfig())
	out, err := r.TryFormat("1.5", numfmt.RawNumber, 0)
	require.NoError(t, err)
	assert.Equal(t, "1.500", out)
}

func TestFormatRegistryNoFormatPassesThrough(t *testing.T) {
	r := NewFormatRegistry(nil, []int{noFormat}, nil, DefaultConfig())
	out, err := r.TryFormat("hello", numfmt.RawText, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestFormatRegistryUnknownStyleIndexPassesThrough(t *testing.T) {
	r := NewFormatRegistry(nil, []int{}, nil, DefaultConfig())
	out, err := r.TryFormat("hello", numfmt.RawText, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestFormatRegistryMissingFormatIDErrors(t *testing.T) {
	r := NewFormatRegistry(nil, []int{999}, nil, DefaultConfig())
	_, err := r.TryFormat("1", numfmt.RawNumber, 0)
	require.Error(t, err)
	var target *ErrFormatParse
	assert.ErrorAs(t, err, &target)
}

func TestFormatRegistryEmptyRawPassesThrough(t *testing.T) {
	r := NewFormatRegistry(nil, []int{1}, nil, DefaultConfig())
	out, err := r.TryFormat("", numfmt.RawNumber, 0)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestFormatRegistryGeneralFormatIDPassesNumberThrough(t *testing.T) {
	r := NewFormatRegistry(nil, []int{0}, nil, DefaultConfig())
	out, err := r.TryFormat("1234.5", numfmt.RawNumber, 0)
	require.NoError(t, err)
	assert.Equal(t, "1234.5", out)
}

func TestFormatRegistryGeneralFormatIDRendersScientificPlain(t *testing.T) {
	r := NewFormatRegistry(nil, []int{0}, nil, DefaultConfig())
	out, err := r.TryFormat("1E+02", numfmt.RawNumber, 0)
	require.NoError(t, err)
	assert.Equal(t, "100", out)
}

func TestFormatRegistryGeneralFormatIDPassesTextThrough(t *testing.T) {
	r := NewFormatRegistry(nil, []int{0}, nil, DefaultConfig())
	out, err := r.TryFormat("hello", numfmt.RawText, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestFormatRegistryMemoizesParsedFormat(t *testing.T) {
	r := NewFormatRegistry(map[int]string{200: "0.00"}, []int{200, 200}, nil, DefaultConfig())
	_, err := r.TryFormat("1", numfmt.RawNumber, 0)
	require.NoError(t, err)
	pf, err := r.parsedFormat(200)
	require.NoError(t, err)
	pf2, err := r.parsedFormat(200)
	require.NoError(t, err)
	assert.Same(t, pf, pf2)
}
