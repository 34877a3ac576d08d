package xlsxreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnNameToIndex(t *testing.T) {
	cases := map[string]int{
		"A":   0,
		"Z":   25,
		"AA":  26,
		"AB":  27,
		"AZ":  51,
		"BA":  52,
		"XFD": 16383,
	}
	for name, want := range cases {
		assert.Equal(t, want, ColumnNameToIndex(name), name)
	}
}

func TestColumnIndexToName(t *testing.T) {
	cases := map[int]string{
		0:     "A",
		25:    "Z",
		26:    "AA",
		27:    "AB",
		51:    "AZ",
		52:    "BA",
		16383: "XFD",
	}
	for idx, want := range cases {
		assert.Equal(t, want, ColumnIndexToName(idx), idx)
	}
}

func TestColumnNameRoundTrip(t *testing.T) {
	for idx := 0; idx < 2000; idx++ {
		name := ColumnIndexToName(idx)
		assert.Equal(t, idx, ColumnNameToIndex(name), name)
	}
}

func TestSplitCellRef(t *testing.T) {
	col, row := splitCellRef("AC12")
	assert.Equal(t, "AC", col)
	assert.Equal(t, "12", row)
}

func TestColumnFromCellRef(t *testing.T) {
	assert.Equal(t, 0, columnFromCellRef("A1"))
	assert.Equal(t, 27, columnFromCellRef("AB5"))
	assert.Equal(t, -1, columnFromCellRef("5"))
}
