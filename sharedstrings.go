// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
)

const cacheGrowBlock = 100

// spillFile records where one spill file's contiguous range of indexes
// begins and how many entries it holds; the handle is kept open only when
// the store's keepHandles option is set.
type spillFile struct {
	path       string
	firstIndex int
	count      int
	cursor     int // next line index this handle would read, -1 if closed
	fh         *os.File
	bufR       *bufio.Reader
}

// SharedStringStore is the bounded-memory lookup table from shared-string
// index to its decoded text. It scans the shared-strings XML exactly once
// at construction; after that, Lookup never re-scans unless both the RAM
// cache and every spill file miss.
type SharedStringStore struct {
	cfg SharedStringsConfig

	cache      []string // dense, index 0..len(cache)-1 always resident
	cacheFull  bool     // true once the budget stopped growing cache

	spillDir   string
	spills     []int // sorted first-indexes, parallel to spillByFirst
	spillByFirst map[int]*spillFile

	total int // total number of <si> entries seen

	xmlPath   string
	xmlCursor int // index the original-XML fallback decoder is positioned at
	xmlDec    *xml.Decoder
	xmlFile   *os.File

	startRSS uint64
}

// NewSharedStringStore scans xmlPath (the shared-strings part, extracted to
// a temp file) exactly once, populating the RAM cache and/or spill files per
// cfg, and returns a store ready for Lookup. spillDir is where spill files
// are written; it must already exist.
func NewSharedStringStore(xmlPath, spillDir string, cfg SharedStringsConfig) (*SharedStringStore, error) {
	s := &SharedStringStore{
		cfg:          cfg,
		spillDir:     spillDir,
		spillByFirst: make(map[int]*spillFile),
		xmlPath:      xmlPath,
		startRSS:     currentRSS(),
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil // shared strings part is optional; degrade gracefully
		}
		return nil, &ErrFileNotFound{Path: xmlPath, Err: err}
	}
	defer f.Close()

	dec := newXMLDecoder(f)
	var curSpill *bufio.Writer
	var curSpillFile *os.File
	var curFirstIndex, curCount int

	flushSpill := func() error {
		if curSpillFile == nil {
			return nil
		}
		if err := curSpill.Flush(); err != nil {
			return err
		}
		path := curSpillFile.Name()
		if err := curSpillFile.Close(); err != nil {
			return err
		}
		s.spillByFirst[curFirstIndex] = &spillFile{path: path, firstIndex: curFirstIndex, count: curCount, cursor: -1}
		s.spills = append(s.spills, curFirstIndex)
		curSpillFile = nil
		return nil
	}

	var sb strings.Builder
	inSI, inT := false, false
	idx := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ErrPartMissing{Part: xmlPath}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inSI = true
				sb.Reset()
			case "t":
				if inSI {
					inT = true
				}
			}
		case xml.CharData:
			if inSI && inT {
				sb.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				inSI = false
				value := sb.String()

				if cfg.UseCache && !s.cacheFull && currentRSS()-s.startRSS < uint64(cfg.CacheBytesKB)*1024 {
					if len(s.cache) == cap(s.cache) {
						grown := make([]string, len(s.cache), len(s.cache)+cacheGrowBlock)
						copy(grown, s.cache)
						s.cache = grown
					}
					s.cache = append(s.cache, value)
				} else {
					s.cacheFull = true
					if cfg.UseSpill {
						if curSpillFile == nil || curCount >= cfg.SpillEntriesPerFile {
							if err := flushSpill(); err != nil {
								return nil, err
							}
							fh, err := os.CreateTemp(spillDir, fmt.Sprintf("shared_strings_tmp_%d_*.txt", idx))
							if err != nil {
								return nil, err
							}
							curSpillFile = fh
							curSpill = bufio.NewWriter(fh)
							curFirstIndex = idx
							curCount = 0
						}
						enc, err := json.Marshal(value)
						if err != nil {
							return nil, err
						}
						if _, err := curSpill.Write(enc); err != nil {
							return nil, err
						}
						if err := curSpill.WriteByte('\n'); err != nil {
							return nil, err
						}
						curCount++
					}
					// else: dropped; future lookups fall back to the original XML
				}
				idx++
			}
		}
	}
	if err := flushSpill(); err != nil {
		return nil, err
	}
	sort.Ints(s.spills)
	s.total = idx
	return s, nil
}

// Lookup returns the text for shared-string index i, or "" if i is out of
// range (an out-of-range index is a recoverable condition, never an error).
func (s *SharedStringStore) Lookup(i int) string {
	if i < 0 || i >= s.total {
		return ""
	}
	if i < len(s.cache) {
		return s.cache[i]
	}
	if sf := s.spillCovering(i); sf != nil {
		v, err := s.readFromSpill(sf, i)
		if err == nil {
			return v
		}
	}
	return s.readFromOriginalXML(i)
}

// spillCovering returns the spill file whose [first, first+count) range
// contains i, choosing the largest first-index <= i (spill files are
// contiguous and non-overlapping by construction).
func (s *SharedStringStore) spillCovering(i int) *spillFile {
	var best *spillFile
	bestFirst := -1
	for _, first := range s.spills {
		if first <= i && first > bestFirst {
			sf := s.spillByFirst[first]
			if i < first+sf.count {
				best = sf
				bestFirst = first
			}
		}
	}
	return best
}

func (s *SharedStringStore) readFromSpill(sf *spillFile, i int) (string, error) {
	want := i - sf.firstIndex

	if sf.fh == nil || sf.cursor > want {
		if sf.fh != nil {
			sf.fh.Close()
		}
		fh, err := os.Open(sf.path)
		if err != nil {
			return "", err
		}
		sf.fh = fh
		sf.bufR = bufio.NewReader(fh)
		sf.cursor = 0
	}
	for sf.cursor < want {
		if _, err := sf.bufR.ReadString('\n'); err != nil {
			return "", err
		}
		sf.cursor++
	}
	line, err := sf.bufR.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	sf.cursor++
	if !s.cfg.KeepHandles {
		sf.fh.Close()
		sf.fh = nil
		sf.cursor = -1
	}
	var v string
	if jsonErr := json.Unmarshal([]byte(strings.TrimRight(line, "\n")), &v); jsonErr != nil {
		return "", jsonErr
	}
	return v, nil
}

// readFromOriginalXML is the last-resort fallback: re-scan the
// shared-strings XML from the beginning (or continue from the current
// cursor if i is ahead of it) until index i is reached.
func (s *SharedStringStore) readFromOriginalXML(i int) string {
	if s.xmlDec == nil || i < s.xmlCursor {
		if s.xmlFile != nil {
			s.xmlFile.Close()
		}
		f, err := os.Open(s.xmlPath)
		if err != nil {
			return ""
		}
		s.xmlFile = f
		s.xmlDec = newXMLDecoder(f)
		s.xmlCursor = 0
	}

	var sb strings.Builder
	inSI, inT := false, false
	for {
		tok, err := s.xmlDec.Token()
		if err != nil {
			// unexpected EOF during fallback traversal: empty string, close store
			s.Close()
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inSI = true
				sb.Reset()
			case "t":
				if inSI {
					inT = true
				}
			}
		case xml.CharData:
			if inSI && inT {
				sb.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				inSI = false
				if s.xmlCursor == i {
					s.xmlCursor++
					return sb.String()
				}
				s.xmlCursor++
			}
		}
	}
}

// Close releases every file handle the store holds: kept spill handles and
// the original-XML fallback handle.
func (s *SharedStringStore) Close() {
	for _, sf := range s.spillByFirst {
		if sf.fh != nil {
			sf.fh.Close()
			sf.fh = nil
		}
	}
	if s.xmlFile != nil {
		s.xmlFile.Close()
		s.xmlFile = nil
	}
	s.xmlDec = nil
}

// currentRSS approximates the process's resident set size in bytes using
// the runtime's own bookkeeping of heap and stack memory obtained from the
// OS. It is a deliberately coarse proxy for the documented RSS-delta
// budget: exact RSS requires OS-specific /proc or syscall access this
// reader avoids to stay portable.
func currentRSS() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Sys
}
