// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"github.com/AsperaGmbH/xlsx-reader/internal/numfmt"
)

// noFormat is the style-index table sentinel meaning "do not format this
// cell" (xf.applyNumberFormat == false, or the xf carries no numFmtId).
const noFormat = -1

// FormatRegistry resolves a cell's style-index through numFmtId to a
// FormatString, parses and caches that string's sections, and applies the
// Value Formatter to raw cell data. One instance is owned per open reader.
type FormatRegistry struct {
	overrides map[int]string
	document  map[int]string
	styleToFmt []int // style-index -> format-id, or noFormat

	parsed map[int]*numfmt.ParsedFormat

	opts numfmt.Options
}

// NewFormatRegistry builds a registry from the document's numFmtId table
// (typically parsed out of xl/styles.xml's numFmts element), the
// style-index -> format-id table (from cellXfs), and any caller overrides.
func NewFormatRegistry(document map[int]string, styleToFmt []int, overrides map[int]string, cfg Config) *FormatRegistry {
	return &FormatRegistry{
		overrides:  overrides,
		document:   document,
		styleToFmt: styleToFmt,
		parsed:     make(map[int]*numfmt.ParsedFormat),
		opts: numfmt.Options{
			ReturnUnformatted:       cfg.ReturnUnformatted,
			ReturnPercentageDecimal: cfg.ReturnPercentageDecimal,
			ReturnDateTimeObjects:   cfg.ReturnDateTimeObjects,
			ForceDateFormat:         cfg.ForceDateFormat,
			ForceTimeFormat:         cfg.ForceTimeFormat,
			ForceDateTimeFormat:     cfg.ForceDateTimeFormat,
		},
	}
}

// lookupFormatString resolves a format-id through overrides, then built-ins,
// then the document table; id 0 is always "General" and is not looked up in
// the overrides. A missing id is a hard error, raised lazily at
// first application (per the error-handling design: format parse errors
// surface on use, not on registry construction).
func (r *FormatRegistry) lookupFormatString(id int) (string, error) {
	if id == 0 {
		return "General", nil
	}
	if s, ok := r.overrides[id]; ok {
		return s, nil
	}
	if s, ok := numfmt.Builtin[id]; ok {
		return s, nil
	}
	if s, ok := r.document[id]; ok {
		return s, nil
	}
	return "", &ErrFormatParse{FormatID: id}
}

// parsedFormat returns the cached ParsedFormat for a format-id, parsing and
// memoizing it on first use.
func (r *FormatRegistry) parsedFormat(id int) (*numfmt.ParsedFormat, error) {
	if pf, ok := r.parsed[id]; ok {
		return pf, nil
	}
	raw, err := r.lookupFormatString(id)
	if err != nil {
		return nil, err
	}
	pf, err := numfmt.ParseFormat(raw)
	if err != nil {
		return nil, &ErrFormatParse{FormatID: id, Format: raw, Detail: err.Error()}
	}
	r.parsed[id] = pf
	return pf, nil
}

// formatIDForStyle resolves a style-index to a format-id, or noFormat if the
// cell should pass through unformatted.
func (r *FormatRegistry) formatIDForStyle(styleIndex int) int {
	if styleIndex < 0 || styleIndex >= len(r.styleToFmt) {
		return noFormat
	}
	return r.styleToFmt[styleIndex]
}

// TryFormat applies the registered format for styleIndex to raw. An empty
// raw value, a noFormat style-index, or style_index < 0 all pass through
// unchanged. A format-parse failure is returned to the caller; per-cell
// value-evaluation failures never are (the raw text is returned instead).
func (r *FormatRegistry) TryFormat(raw string, kind numfmt.RawKind, styleIndex int) (string, error) {
	if raw == "" {
		return raw, nil
	}
	id := r.formatIDForStyle(styleIndex)
	if id == noFormat {
		return raw, nil
	}
	pf, err := r.parsedFormat(id)
	if err != nil {
		return "", err
	}
	res, err := numfmt.Format(pf, numfmt.RawValue{Kind: kind, Raw: raw}, r.opts)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
