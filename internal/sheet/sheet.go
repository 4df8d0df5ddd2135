// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sheet converts between CSV files and XLSX workbooks.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx/v3"
)

// CSV→XLSX modes.
const (
	ModeBasic = "basic"
	ModeAI    = "ai"
)

const (
	sheetName      = "Sheet1"
	maxColumnWidth = 50
)

// Table is a CSV file held in memory. Rows may be ragged.
type Table struct {
	Header []string
	Rows   [][]string
}

// Width returns the number of columns, counting the widest row.
func (t *Table) Width() int {
	w := len(t.Header)
	for _, r := range t.Rows {
		w = max(w, len(r))
	}
	return w
}

// Column returns the values of column i, with "" for short rows.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// ReadCSV loads a CSV file whose first record is the header.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: no columns to parse", filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &Table{Header: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Converter runs the spreadsheet conversions.
type Converter struct {
	ai   Suggester
	gate Gate
	log  logrus.FieldLogger
}

// NewConverter returns a Converter. ai and gate may be nil, in which case
// ai mode degrades to basic.
func NewConverter(ai Suggester, gate Gate, log logrus.FieldLogger) *Converter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Converter{ai: ai, gate: gate, log: log.WithField("component", "sheet")}
}

// CSVToXLSX converts input to a workbook at output.
func (c *Converter) CSVToXLSX(ctx context.Context, input, output, mode string) (string, error) {
	if mode == "" {
		mode = ModeBasic
	}
	if mode != ModeBasic && mode != ModeAI {
		return "", fmt.Errorf("unknown mode %q (valid: basic, ai)", mode)
	}
	t, err := ReadCSV(input)
	if err != nil {
		return "", err
	}
	log := c.log.WithFields(logrus.Fields{"input": input, "mode": mode})

	if mode == ModeAI {
		err = c.enhanced(ctx, t, output, log)
	} else {
		log.Info("converting CSV to Excel")
		err = c.basic(t, output)
	}
	if err != nil {
		return "", err
	}
	log.WithField("rows", len(t.Rows)).Info("conversion complete")
	return output, nil
}

// XLSXToCSV writes the first sheet of input as CSV.
func (c *Converter) XLSXToCSV(input, output string) (string, error) {
	wb, err := xlsx.OpenFile(input)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filepath.Base(input), err)
	}
	if len(wb.Sheets) == 0 {
		return "", fmt.Errorf("%s has no sheets", filepath.Base(input))
	}
	sh := wb.Sheets[0]

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(output)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for r := 0; r < sh.MaxRow; r++ {
		rec := make([]string, sh.MaxCol)
		for col := 0; col < sh.MaxCol; col++ {
			cell, err := sh.Cell(r, col)
			if err != nil {
				return "", fmt.Errorf("reading row %d: %w", r+1, err)
			}
			rec[col] = cell.String()
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	c.log.WithFields(logrus.Fields{"input": input, "sheet": sh.Name, "rows": sh.MaxRow}).Info("wrote CSV")
	return output, nil
}

func (c *Converter) basic(t *Table, output string) error {
	wb, err := buildWorkbook(t)
	if err != nil {
		return err
	}
	return save(wb, output)
}

type workbook struct {
	file  *xlsx.File
	sheet *xlsx.Sheet
	table *Table
}

func buildWorkbook(t *Table) (*workbook, error) {
	f := xlsx.NewFile()
	sh, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("adding sheet: %w", err)
	}
	header := sh.AddRow()
	for _, h := range t.Header {
		header.AddCell().SetString(h)
	}
	for _, rec := range t.Rows {
		row := sh.AddRow()
		for _, v := range rec {
			setValue(row.AddCell(), v)
		}
	}
	return &workbook{file: f, sheet: sh, table: t}, nil
}

// setValue stores numeric strings as numbers.
func setValue(cell *xlsx.Cell, v string) {
	s := strings.TrimSpace(v)
	if s == "" {
		return
	}
	if n, err := strconv.Atoi(s); err == nil {
		cell.SetInt(n)
		return
	}
	if isDecimal(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			cell.SetFloat(f)
			return
		}
	}
	cell.SetString(v)
}

// isDecimal rejects the spellings ParseFloat accepts but a spreadsheet
// user would read as text (inf, nan, hex floats, underscores).
func isDecimal(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// columnWidths returns min(longest value + 2, 50) per column, header included.
func columnWidths(t *Table) []float64 {
	widths := make([]float64, t.Width())
	for i := range widths {
		longest := 0
		if i < len(t.Header) {
			longest = utf8.RuneCountInString(t.Header[i])
		}
		for _, v := range t.Column(i) {
			longest = max(longest, utf8.RuneCountInString(v))
		}
		widths[i] = float64(min(longest+2, maxColumnWidth))
	}
	return widths
}

func save(wb *workbook, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := wb.file.Save(output); err != nil {
		return fmt.Errorf("saving %s: %w", output, err)
	}
	return nil
}
