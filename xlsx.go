// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path"
	"path/filepath"
)

// Reader streams the logical contents of one open .xlsx document. It owns a
// private temp directory (created on Open, emptied on Close) and a set of
// per-part caches: the Shared-String Store, the Format Registry, and the
// sheet-name -> part-path table. Not safe for concurrent use.
type Reader struct {
	cfg Config

	tempDir   string
	sheets    []sheetRef // document order
	strings   *SharedStringStore
	registry  *FormatRegistry
}

type sheetRef struct {
	name string
	path string // archive-relative path to the worksheet XML, already extracted under tempDir
}

// Open opens path with the default configuration. See OpenReader for the
// configurable entry point.
func Open(path string) (*Reader, error) {
	return OpenReader(path, Config{})
}

// OpenReader opens an .xlsx file at path under cfg, unpacking it into a
// private temp directory, resolving relationships, and populating the
// Shared-String Store and Format Registry eagerly. The returned Reader must
// be closed to release its temp directory and any kept spill-file handles.
func OpenReader(path string, cfg Config) (*Reader, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrFileNotFound{Path: path, Err: err}
		}
		return nil, &ErrNotZip{Err: err}
	}
	defer zr.Close()

	tempDir, err := os.MkdirTemp(cfg.TempDir, "xlsxreader-")
	if err != nil {
		return nil, err
	}

	extracted, err := extractAll(&zr.Reader, tempDir)
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}

	r := &Reader{cfg: cfg, tempDir: tempDir}
	if err := r.wire(extracted); err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}
	return r, nil
}

// extractAll copies every part of the archive into dir, preserving its
// archive-relative path, and returns a lookup from that path to the
// extracted file's absolute location.
func extractAll(zr *zip.Reader, dir string) (map[string]string, error) {
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		dest := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, err
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		w, err := os.Create(dest)
		if err != nil {
			rc.Close()
			return nil, err
		}
		_, copyErr := io.Copy(w, rc)
		rc.Close()
		w.Close()
		if copyErr != nil {
			return nil, copyErr
		}
		out[f.Name] = dest
	}
	return out, nil
}

// wire resolves relationships and builds the Shared-String Store and Format
// Registry from the extracted parts.
func (r *Reader) wire(extracted map[string]string) error {
	rootRels, err := parseRelationships(extracted["_rels/.rels"])
	if err != nil {
		return err
	}
	workbookPart := rootRels.target("officeDocument", "xl/workbook.xml")
	workbookPath, ok := extracted[workbookPart]
	if !ok {
		return &ErrPartMissing{Part: workbookPart}
	}

	workbookRelsPath := relsPathFor(workbookPart)
	workbookRels, _ := parseRelationships(extracted[workbookRelsPath]) // optional but normally present

	sheets, err := parseWorkbookSheets(workbookPath)
	if err != nil {
		return err
	}

	base := path.Dir(workbookPart)
	r.sheets = make([]sheetRef, 0, len(sheets))
	var stylesPath, sstPath string
	for _, sh := range sheets {
		target := workbookRels.targetByID(sh.rID)
		if target == "" {
			return &ErrRelationship{RID: sh.rID, Detail: "no matching relationship in workbook.xml.rels"}
		}
		full := resolveRelative(base, target)
		p, ok := extracted[full]
		if !ok {
			return &ErrPartMissing{Part: full}
		}
		r.sheets = append(r.sheets, sheetRef{name: sh.name, path: p})
	}
	for _, rel := range workbookRels.all() {
		full := resolveRelative(base, rel.target)
		switch {
		case isRelType(rel.relType, "styles"):
			stylesPath = extracted[full]
		case isRelType(rel.relType, "sharedStrings"):
			sstPath = extracted[full]
		}
	}

	document := make(map[int]string)
	var styleToFmt []int
	if stylesPath != "" {
		ss, err := parseStyleSheetXML(stylesPath)
		if err != nil {
			return err
		}
		document = ss.numFmtTable()
		styleToFmt = ss.styleToFormatID()
	}

	r.registry = NewFormatRegistry(document, styleToFmt, r.cfg.CustomFormats, r.cfg)

	spillDir := filepath.Join(r.tempDir, "spill")
	if err := os.MkdirAll(spillDir, 0o755); err != nil {
		return err
	}
	store, err := NewSharedStringStore(sstPath, spillDir, r.cfg.SharedStrings)
	if err != nil {
		return err
	}
	r.strings = store
	return nil
}

// SheetNames returns the workbook's sheet names in document order.
func (r *Reader) SheetNames() []string {
	names := make([]string, len(r.sheets))
	for i, s := range r.sheets {
		names[i] = s.name
	}
	return names
}

// Rows opens a streaming pull-iterator over sheet's rows. The returned
// RowStream must be closed (or exhausted via Next until it returns false)
// before opening another stream over the same Reader, since both share the
// underlying Shared-String Store.
func (r *Reader) Rows(sheet string) (*RowStream, error) {
	for _, s := range r.sheets {
		if s.name == sheet {
			return newRowStream(s.path, r.registry, r.strings, r.cfg)
		}
	}
	return nil, &ErrSheetNotExist{SheetName: sheet}
}

// Close releases the Shared-String Store's handles and empties the
// Reader's temp directory. After Close, no further Rows calls are valid.
func (r *Reader) Close() error {
	if r.strings != nil {
		r.strings.Close()
	}
	if r.tempDir == "" {
		return nil
	}
	entries, err := os.ReadDir(r.tempDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(r.tempDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ── relationships ──────────────────────────────────────────────────────────

type relationship struct {
	id      string
	relType string
	target  string
}

type relationships struct {
	rels []relationship
}

func (rs relationships) all() []relationship { return rs.rels }

func (rs relationships) targetByID(id string) string {
	for _, r := range rs.rels {
		if r.id == id {
			return r.target
		}
	}
	return ""
}

// target returns the first relationship's target whose type contains
// typeSubstr (e.g. "officeDocument"), or fallback if none matches.
func (rs relationships) target(typeSubstr, fallback string) string {
	for _, r := range rs.rels {
		if isRelType(r.relType, typeSubstr) {
			return resolveRelative("", r.target)
		}
	}
	return fallback
}

func isRelType(relType, substr string) bool {
	return len(relType) >= len(substr) && containsFold(relType, substr)
}

func containsFold(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if equalFold(s[i:i+len(substr)], substr) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func parseRelationships(path string) (relationships, error) {
	if path == "" {
		return relationships{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return relationships{}, nil
		}
		return relationships{}, err
	}
	defer f.Close()

	dec := newXMLDecoder(f)
	var out relationships
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return relationships{}, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var rel relationship
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				rel.id = a.Value
			case "Type":
				rel.relType = a.Value
			case "Target":
				rel.target = a.Value
			}
		}
		out.rels = append(out.rels, rel)
	}
	return out, nil
}

// relsPathFor computes the archive-relative .rels sidecar path for a part,
// e.g. "xl/workbook.xml" -> "xl/_rels/workbook.xml.rels".
func relsPathFor(partPath string) string {
	dir, file := path.Split(partPath)
	return path.Join(dir, "_rels", file+".rels")
}

// resolveRelative joins a relationship target against the directory of the
// part that declared it, normalizing ".." segments.
func resolveRelative(baseDir, target string) string {
	if len(target) > 0 && target[0] == '/' {
		return target[1:]
	}
	return path.Clean(path.Join(baseDir, target))
}

// ── workbook sheet list ──────────────────────────────────────────────────────

type workbookSheet struct {
	name string
	rID  string
}

func parseWorkbookSheets(path string) ([]workbookSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrPartMissing{Part: path}
	}
	defer f.Close()

	dec := newXMLDecoder(f)
	var out []workbookSheet
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var sh workbookSheet
		for _, a := range se.Attr {
			switch {
			case a.Name.Local == "name":
				sh.name = a.Value
			case a.Name.Local == "id" && isDocRelNS(a.Name.Space):
				sh.rID = a.Value
			case a.Name.Local == "id" && a.Name.Space == "":
				if sh.rID == "" {
					sh.rID = a.Value
				}
			}
		}
		out = append(out, sh)
	}
	return out, nil
}
