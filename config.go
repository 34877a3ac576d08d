// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlsxreader

import (
	"os"

	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"
)

// EmptyCellPolicy controls how gaps between populated cell positions, and
// trailing empty cells, are represented in an emitted Row.
type EmptyCellPolicy string

const (
	SkipEmptyNone     EmptyCellPolicy = "none"
	SkipEmptyAll      EmptyCellPolicy = "all"
	SkipEmptyTrailing EmptyCellPolicy = "trailing"
)

// SharedStringsConfig tunes the bounded-memory behavior of the Shared-String
// Store.
type SharedStringsConfig struct {
	UseCache           bool `yaml:"use_cache"`
	CacheBytesKB       int  `yaml:"cache_bytes_kb"`
	UseSpill           bool `yaml:"use_spill"`
	SpillEntriesPerFile int `yaml:"spill_entries_per_file"`
	KeepHandles        bool `yaml:"keep_handles"`
}

// Config is the closed configuration surface accepted by Open/OpenReader.
// Zero-value fields produce the documented defaults via withDefaults.
type Config struct {
	TempDir             string              `yaml:"temp_dir"`
	SkipEmptyCells      EmptyCellPolicy     `yaml:"skip_empty_cells"`
	SkipEmptyRows       EmptyCellPolicy     `yaml:"skip_empty_rows"`
	OutputColumnNames   bool                `yaml:"output_column_names"`
	SharedStrings       SharedStringsConfig `yaml:"shared_strings"`
	CustomFormats       map[int]string      `yaml:"custom_formats"`
	ForceDateFormat     string              `yaml:"force_date_format"`
	ForceTimeFormat     string              `yaml:"force_time_format"`
	ForceDateTimeFormat string              `yaml:"force_datetime_format"`
	ReturnUnformatted       bool `yaml:"return_unformatted"`
	ReturnPercentageDecimal bool `yaml:"return_percentage_decimal"`
	ReturnDateTimeObjects   bool `yaml:"return_date_time_objects"`
	XMLParserFlags          int  `yaml:"xml_parser_flags"`
}

// FlagHugeDocument mirrors libxml2's XML_PARSE_HUGE. It is only stored in
// Config.XMLParserFlags: newXMLDecoder does not read XMLParserFlags, so the
// flag does not change how documents are parsed.
const FlagHugeDocument = 1 << 0

// DefaultConfig returns the configuration a reader falls back to when the
// caller passes a zero-value Config.
func DefaultConfig() Config {
	return Config{
		SkipEmptyCells: SkipEmptyNone,
		SkipEmptyRows:  SkipEmptyNone,
		SharedStrings: SharedStringsConfig{
			UseCache:            true,
			CacheBytesKB:        16 * 1024,
			UseSpill:            true,
			SpillEntriesPerFile: 5000,
			KeepHandles:         true,
		},
		XMLParserFlags: FlagHugeDocument,
	}
}

// withDefaults fills unset fields of cfg from DefaultConfig without
// mutating the caller's value. SharedStrings is taken from cfg as a whole
// once any of its sub-fields is set, so its other sub-fields stay zero; the
// bool fields outside SharedStrings are always taken from cfg.
func withDefaults(cfg Config) Config {
	merged := deepcopy.Copy(DefaultConfig()).(Config)
	if cfg.TempDir != "" {
		merged.TempDir = cfg.TempDir
	}
	if cfg.SkipEmptyCells != "" {
		merged.SkipEmptyCells = cfg.SkipEmptyCells
	}
	if cfg.SkipEmptyRows != "" {
		merged.SkipEmptyRows = cfg.SkipEmptyRows
	}
	merged.OutputColumnNames = cfg.OutputColumnNames
	if cfg.SharedStrings != (SharedStringsConfig{}) {
		merged.SharedStrings = cfg.SharedStrings
	}
	if cfg.CustomFormats != nil {
		merged.CustomFormats = deepcopy.Copy(cfg.CustomFormats).(map[int]string)
	}
	if cfg.ForceDateFormat != "" {
		merged.ForceDateFormat = cfg.ForceDateFormat
	}
	if cfg.ForceTimeFormat != "" {
		merged.ForceTimeFormat = cfg.ForceTimeFormat
	}
	if cfg.ForceDateTimeFormat != "" {
		merged.ForceDateTimeFormat = cfg.ForceDateTimeFormat
	}
	merged.ReturnUnformatted = cfg.ReturnUnformatted
	merged.ReturnPercentageDecimal = cfg.ReturnPercentageDecimal
	merged.ReturnDateTimeObjects = cfg.ReturnDateTimeObjects
	if cfg.XMLParserFlags != 0 {
		merged.XMLParserFlags = cfg.XMLParserFlags
	}
	return merged
}

// Validate rejects configuration values outside their declared domain.
func (c Config) Validate() error {
	switch c.SkipEmptyCells {
	case "", SkipEmptyNone, SkipEmptyAll, SkipEmptyTrailing:
	default:
		return &ErrConfig{Field: "skip_empty_cells", Detail: "must be one of none, all, trailing"}
	}
	switch c.SkipEmptyRows {
	case "", SkipEmptyNone, SkipEmptyAll, SkipEmptyTrailing:
	default:
		return &ErrConfig{Field: "skip_empty_rows", Detail: "must be one of none, all, trailing"}
	}
	if c.SharedStrings.CacheBytesKB != 0 && c.SharedStrings.CacheBytesKB < 8 {
		return &ErrConfig{Field: "shared_strings.cache_bytes_kb", Detail: "must be >= 8"}
	}
	if c.SharedStrings.SpillEntriesPerFile < 0 {
		return &ErrConfig{Field: "shared_strings.spill_entries_per_file", Detail: "must be > 0"}
	}
	return nil
}

// LoadConfig reads a YAML-encoded Config from path, applying the declared
// defaults through withDefaults (with its SharedStrings and bool rules).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ErrFileNotFound{Path: path, Err: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ErrConfig{Field: "(document)", Detail: err.Error()}
	}
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
