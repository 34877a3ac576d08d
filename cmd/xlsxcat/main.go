// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command xlsxcat streams every sheet of an .xlsx workbook to stdout as CSV.
package main

import (
	"encoding/csv"
	"os"

	"github.com/sirupsen/logrus"

	xlsxreader "github.com/AsperaGmbH/xlsx-reader"
)

func main() {
	if len(os.Args) < 2 {
		logrus.Error("usage: xlsxcat <path.xlsx> [config.yaml]")
		os.Exit(2)
	}
	if err := run(os.Args[1], configPath(os.Args)); err != nil {
		logrus.WithError(err).Error("xlsxcat failed")
		os.Exit(1)
	}
}

func configPath(args []string) string {
	if len(args) < 3 {
		return ""
	}
	return args[2]
}

func run(path, cfgPath string) error {
	cfg := xlsxreader.DefaultConfig()
	if cfgPath != "" {
		loaded, err := xlsxreader.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	r, err := xlsxreader.OpenReader(path, cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	logrus.WithField("path", path).WithField("sheets", len(r.SheetNames())).Info("opened workbook")

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	for _, name := range r.SheetNames() {
		rows, err := r.Rows(name)
		if err != nil {
			return err
		}
		for {
			row, ok := rows.Next()
			if !ok {
				break
			}
			if err := w.Write(row.Cells); err != nil {
				rows.Close()
				return err
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}
