// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"encoding/xml"
	"os"
)

// xlsxStyleSheet is the root element of the Styles part (xl/styles.xml).
// Only the two sub-elements the number-format pipeline consumes are
// modeled: font, fill, border, named-style and differential-format
// definitions are read by spreadsheet applications for presentation the
// reader never reproduces, and are intentionally left unparsed here.
type xlsxStyleSheet struct {
	XMLName xml.Name     `xml:"styleSheet"`
	NumFmts *xlsxNumFmts `xml:"numFmts"`
	CellXfs *xlsxCellXfs `xml:"cellXfs"`
}

// xlsxNumFmts directly maps the numFmts element: the workbook's
// document-defined number formats, each keyed by a numFmtId >= 164.
type xlsxNumFmts struct {
	Count  int           `xml:"count,attr"`
	NumFmt []*xlsxNumFmt `xml:"numFmt"`
}

// xlsxNumFmt directly maps the numFmt element.
type xlsxNumFmt struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

// xlsxCellXfs directly maps the cellXfs element: the master formatting
// records cells reference by zero-based index via their `s` attribute.
type xlsxCellXfs struct {
	Count int      `xml:"count,attr"`
	Xf    []xlsxXf `xml:"xf"`
}

// xlsxXf directly maps one xf element. Only the number-format-relevant
// attributes are kept; font/fill/border/alignment/protection indices are
// parsed by full styling libraries but have no bearing on display value.
type xlsxXf struct {
	NumFmtID          *int  `xml:"numFmtId,attr"`
	ApplyNumberFormat *bool `xml:"applyNumberFormat,attr"`
}

// parseStyleSheetXML reads and unmarshals the Styles part at path.
func parseStyleSheetXML(path string) (*xlsxStyleSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrPartMissing{Part: path}
	}
	defer f.Close()

	var ss xlsxStyleSheet
	dec := newXMLDecoder(f)
	if err := dec.Decode(&ss); err != nil {
		return nil, &ErrPartMissing{Part: path}
	}
	return &ss, nil
}

// numFmtTable returns the document-defined format-id -> format-string
// table (the numFmts element), for lookup by the Format Registry.
func (ss *xlsxStyleSheet) numFmtTable() map[int]string {
	out := make(map[int]string)
	if ss.NumFmts == nil {
		return out
	}
	for _, nf := range ss.NumFmts.NumFmt {
		out[nf.NumFmtID] = nf.FormatCode
	}
	return out
}

// styleToFormatID builds the style-index -> format-id table the Format
// Registry needs. A cellXf that declares applyNumberFormat=false, or that
// carries no numFmtId, maps to noFormat ("do not format").
func (ss *xlsxStyleSheet) styleToFormatID() []int {
	if ss.CellXfs == nil {
		return nil
	}
	out := make([]int, len(ss.CellXfs.Xf))
	for i, xf := range ss.CellXfs.Xf {
		switch {
		case xf.NumFmtID == nil:
			out[i] = noFormat
		case xf.ApplyNumberFormat != nil && !*xf.ApplyNumberFormat:
			out[i] = noFormat
		default:
			out[i] = *xf.NumFmtID
		}
	}
	return out
}
