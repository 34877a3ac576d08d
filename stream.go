// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AsperaGmbH/xlsx-reader/internal/numfmt"
)

// Row is one worksheet row: an ordered sequence of formatted strings indexed
// by 0-based column position. Row carries positions only: the
// OutputColumnNames setting is not consulted, and ColumnIndexToName gives a
// position's A1-style column name.
type Row struct {
	Index int // 1-based row index as it appeared in the sheet
	Cells []string
}

// RowStream pull-parses one worksheet part, emitting Rows in document
// order. It is not safe for concurrent use and is not restartable; call
// Reader.Rows again to re-open the part from the start.
type RowStream struct {
	dec      *xml.Decoder
	f        *os.File
	registry *FormatRegistry
	strings  *SharedStringStore
	cfg      Config

	lastEmittedRow int
	pendingRows    []Row // rows synthesized for a skip_empty_rows=none gap
	done           bool
	err            error
}

// newRowStream opens path (an extracted worksheet XML file) and returns a
// stream ready for Next.
func newRowStream(path string, registry *FormatRegistry, strings_ *SharedStringStore, cfg Config) (*RowStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrPartMissing{Part: path}
	}
	return &RowStream{
		dec:      newXMLDecoder(f),
		f:        f,
		registry: registry,
		strings:  strings_,
		cfg:      cfg,
	}, nil
}

func (rs *RowStream) Close() error {
	if rs.f != nil {
		return rs.f.Close()
	}
	return nil
}

func (rs *RowStream) Err() error { return rs.err }

// Next advances to the next Row, returning false when the stream is
// exhausted (or on the first error, retrievable via Err).
func (rs *RowStream) Next() (Row, bool) {
	if len(rs.pendingRows) > 0 {
		r := rs.pendingRows[0]
		rs.pendingRows = rs.pendingRows[1:]
		return r, true
	}
	if rs.done {
		return Row{}, false
	}

	for {
		tok, err := rs.dec.Token()
		if err == io.EOF {
			rs.done = true
			return rs.flushTrailingGap()
		}
		if err != nil {
			rs.err = err
			rs.done = true
			return Row{}, false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		row, err := rs.readRow(se)
		if err != nil {
			rs.err = err
			rs.done = true
			return Row{}, false
		}
		emit, gapRows := rs.applyRowGapPolicy(row)
		rs.pendingRows = append(rs.pendingRows, gapRows...)
		if emit != nil {
			rs.pendingRows = append(rs.pendingRows, *emit)
		}
		if len(rs.pendingRows) > 0 {
			r := rs.pendingRows[0]
			rs.pendingRows = rs.pendingRows[1:]
			return r, true
		}
		// row was entirely suppressed (skip_empty_rows=all on an empty row);
		// keep scanning for the next <row>.
	}
}

// flushTrailingGap handles skip_empty_rows=none when the sheet ends without
// a final populated row to trigger the ordinary gap-fill path; nothing to
// flush when there was no declared dimension, so this is a no-op today.
func (rs *RowStream) flushTrailingGap() (Row, bool) {
	return Row{}, false
}

// applyRowGapPolicy fills the gap between the last emitted row index and
// row.Index with empty rows (per skip_empty_rows), and decides whether row
// itself should be emitted.
func (rs *RowStream) applyRowGapPolicy(row Row) (emit *Row, gapRows []Row) {
	gapStart := rs.lastEmittedRow + 1
	rowIsEmpty := allEmpty(row.Cells)

	if rs.cfg.SkipEmptyRows == SkipEmptyNone {
		for idx := gapStart; idx < row.Index; idx++ {
			gapRows = append(gapRows, Row{Index: idx})
		}
	}
	rs.lastEmittedRow = row.Index

	if rowIsEmpty && rs.cfg.SkipEmptyRows == SkipEmptyAll {
		return nil, gapRows
	}
	if rowIsEmpty && rs.cfg.SkipEmptyRows == SkipEmptyTrailing {
		// trailing-only suppression cannot be decided until we know there is
		// no further populated row; conservatively emit, since the pull
		// stream cannot look ahead without buffering the whole sheet.
	}
	r := row
	return &r, gapRows
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// readRow consumes one <row>...</row> element, producing a Row whose Cells
// slice is indexed by 0-based column position per the configured
// skip_empty_cells policy.
func (rs *RowStream) readRow(start xml.StartElement) (Row, error) {
	rowIndexStr, _ := attr(start, "r")
	rowIndex, _ := strconv.Atoi(rowIndexStr)

	spanWidth := 0
	if spans, ok := attr(start, "spans"); ok {
		spanWidth = lastSpanWidth(spans)
	}

	cells := make(map[int]string)
	maxCol := -1
	prevCol := -1

	for {
		tok, err := rs.dec.Token()
		if err != nil {
			return Row{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "c" {
				col, text, err := rs.readCell(t, prevCol)
				if err != nil {
					return Row{}, err
				}
				cells[col] = text
				if col > maxCol {
					maxCol = col
				}
				prevCol = col
			}
		case xml.EndElement:
			if t.Name.Local == "row" {
				width := maxInt(maxCol+1, spanWidth)
				return Row{Index: rowIndex, Cells: rs.assembleCells(cells, width)}, nil
			}
		}
	}
}

func (rs *RowStream) assembleCells(cells map[int]string, width int) []string {
	if width <= 0 {
		return nil
	}
	out := make([]string, width)
	for i := 0; i < width; i++ {
		if v, ok := cells[i]; ok {
			out[i] = v
		}
	}
	return rs.applyCellGapPolicy(out, cells)
}

// applyCellGapPolicy drops trailing empty positions per skip_empty_cells;
// interior gaps always remain filled with "" (skip_empty_cells only governs
// trailing behavior for a well-formed sheet, per the row-completion policy).
func (rs *RowStream) applyCellGapPolicy(out []string, _ map[int]string) []string {
	switch rs.cfg.SkipEmptyCells {
	case SkipEmptyAll, SkipEmptyTrailing:
		end := len(out)
		for end > 0 && out[end-1] == "" {
			end--
		}
		return out[:end]
	default:
		return out
	}
}

// readCell consumes one <c>...</c> element and returns its 0-based column
// index and formatted display text.
func (rs *RowStream) readCell(start xml.StartElement, prevCol int) (int, string, error) {
	col := prevCol + 1
	if ref, ok := attr(start, "r"); ok {
		if c := columnFromCellRef(ref); c >= 0 {
			col = c
		}
	}
	cellType, _ := attr(start, "t")
	styleIndex := -1
	if s, ok := attr(start, "s"); ok {
		if n, err := strconv.Atoi(s); err == nil {
			styleIndex = n
		}
	}

	var raw string
	var isInline bool
	depth := 0
	for {
		tok, err := rs.dec.Token()
		if err != nil {
			return 0, "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "v":
				raw = rs.readCharData()
			case "is":
				isInline = true
			case "t":
				if isInline {
					raw = rs.readCharData()
				}
			default:
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == "c" {
				text, err := rs.formatCellValue(raw, cellType, styleIndex)
				return col, text, err
			}
			if depth > 0 {
				depth--
			}
		}
	}
}

func (rs *RowStream) readCharData() string {
	var sb strings.Builder
	for {
		tok, err := rs.dec.Token()
		if err != nil {
			return sb.String()
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String()
		}
	}
}

func (rs *RowStream) formatCellValue(raw, cellType string, styleIndex int) (string, error) {
	if cellType == "s" {
		if rs.strings == nil {
			return "", nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", nil
		}
		raw = rs.strings.Lookup(n)
		return rs.registry.TryFormat(raw, numfmt.RawText, styleIndex)
	}
	if cellType == "str" || cellType == "inlineStr" || cellType == "e" || cellType == "b" {
		return rs.registry.TryFormat(raw, numfmt.RawText, styleIndex)
	}
	return rs.registry.TryFormat(raw, numfmt.RawNumber, styleIndex)
}

// lastSpanWidth parses a spans attribute ("1:3" or "1:3 6:8") and returns
// the upper bound of its last range.
func lastSpanWidth(spans string) int {
	ranges := strings.Fields(spans)
	if len(ranges) == 0 {
		return 0
	}
	last := ranges[len(ranges)-1]
	parts := strings.SplitN(last, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
