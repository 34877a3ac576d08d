// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"encoding/xml"
	"io"

	"golang.org/x/net/html/charset"
)

// newXMLDecoder wraps the stdlib decoder with a charset-aware CharsetReader
// so worksheet and shared-string parts declared in something other than
// UTF-8 (common with files round-tripped through older locales) still
// decode instead of raising a hard parse error.
func newXMLDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	d.Strict = false
	return d
}

// isMainNS/isDocRelNS/isPkgRelNS accept both the 2006 OOXML edition and the
// newer purl.oclc.org edition of the same namespace.
func isMainNS(ns string) bool {
	return ns == "http://schemas.openxmlformats.org/spreadsheetml/2006/main" ||
		ns == "http://purl.oclc.org/ooxml/spreadsheetml/main"
}

func isDocRelNS(ns string) bool {
	return ns == "http://schemas.openxmlformats.org/officeDocument/2006/relationships" ||
		ns == "http://purl.oclc.org/ooxml/officeDocument/relationships"
}

func isPkgRelNS(ns string) bool {
	return ns == "http://schemas.openxmlformats.org/package/2006/relationships" ||
		ns == "http://purl.oclc.org/ooxml/officeDocument/relationships"
}

// attr looks up an attribute by local name, ignoring namespace, on a
// StartElement token.
func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
