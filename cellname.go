// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"strings"
)

// ColumnNameToIndex decodes an A1-style column reference ("A", "Z", "AA",
// "XFD", ...) into a 0-based column index using base-26 digits where each
// position ranges A-Z (no digit zero).
func ColumnNameToIndex(name string) int {
	name = strings.ToUpper(name)
	idx := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 'A' || c > 'Z' {
			continue
		}
		idx = idx*26 + int(c-'A'+1)
	}
	return idx - 1
}

// ColumnIndexToName encodes a 0-based column index into its A1-style name.
func ColumnIndexToName(idx int) string {
	idx++
	var buf []byte
	for idx > 0 {
		idx--
		buf = append([]byte{byte('A' + idx%26)}, buf...)
		idx /= 26
	}
	return string(buf)
}

// splitCellRef splits a cell reference like "AC12" into its column letters
// and row digits. Either half may be empty if the reference is malformed.
func splitCellRef(ref string) (col string, row string) {
	i := 0
	for i < len(ref) && (ref[i] < '0' || ref[i] > '9') {
		i++
	}
	return ref[:i], ref[i:]
}

// columnFromCellRef returns the 0-based column index encoded by a cell
// reference's leading letters, or -1 if ref carries no recognizable column.
func columnFromCellRef(ref string) int {
	col, _ := splitCellRef(ref)
	if col == "" {
		return -1
	}
	return ColumnNameToIndex(col)
}
