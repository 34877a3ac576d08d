// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import "fmt"

// ErrFileNotFound is raised by Open when the underlying path cannot be read.
type ErrFileNotFound struct {
	Path string
	Err  error
}

func (e *ErrFileNotFound) Error() string {
	return fmt.Sprintf("xlsxreader: cannot open %q: %v", e.Path, e.Err)
}
func (e *ErrFileNotFound) Unwrap() error { return e.Err }

// ErrNotZip is raised when the opened file is not a valid ZIP container.
type ErrNotZip struct {
	Err error
}

func (e *ErrNotZip) Error() string { return fmt.Sprintf("xlsxreader: not a valid zip archive: %v", e.Err) }
func (e *ErrNotZip) Unwrap() error { return e.Err }

// ErrPartMissing is raised when a mandatory archive part (workbook, root
// relationships, a referenced worksheet) cannot be located.
type ErrPartMissing struct {
	Part string
}

func (e *ErrPartMissing) Error() string {
	return fmt.Sprintf("xlsxreader: required part %q is missing from the archive", e.Part)
}

// ErrRelationship is raised when a relationship target cannot be resolved.
type ErrRelationship struct {
	RID    string
	Detail string
}

func (e *ErrRelationship) Error() string {
	return fmt.Sprintf("xlsxreader: relationship %q could not be resolved: %s", e.RID, e.Detail)
}

// ErrSheetNotExist is raised when a caller asks to stream a sheet name the
// workbook does not define.
type ErrSheetNotExist struct {
	SheetName string
}

func (e *ErrSheetNotExist) Error() string {
	return fmt.Sprintf("xlsxreader: sheet %q does not exist", e.SheetName)
}

// ErrFormatParse is raised by the Format Registry when a format string fails
// to tokenize, or when a requested format-id has no entry anywhere in the
// override/built-in/document tables.
type ErrFormatParse struct {
	FormatID int
	Format   string
	Detail   string
}

func (e *ErrFormatParse) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("xlsxreader: cannot parse number format %q: %s", e.Format, e.Detail)
	}
	return fmt.Sprintf("xlsxreader: no format string registered for format-id %d", e.FormatID)
}

// ErrConfig is raised when a configuration value falls outside its declared
// domain (e.g. a cache_bytes_kb below 8).
type ErrConfig struct {
	Field  string
	Detail string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("xlsxreader: invalid configuration for %s: %s", e.Field, e.Detail)
}
