// Package sheet provides the minimal tabular input contract shared by the
// reference loader and the batch listing extractor: CSV files and XLSX workbooks
// are both read as named grids of string cells.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// Sheet is one named grid of cells. Rows may have different lengths.
type Sheet struct {
	Name  string
	Cells [][]string
}

// Cell returns the trimmed cell at row i, column j, or "" when out of range.
func (s *Sheet) Cell(i, j int) string {
	if i < 0 || i >= len(s.Cells) || j < 0 || j >= len(s.Cells[i]) {
		return ""
	}
	return s.Cells[i][j]
}

// Width returns the length of the longest row.
func (s *Sheet) Width() int {
	w := 0
	for _, row := range s.Cells {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Open reads every sheet of a CSV or XLSX file, chosen by extension.
// A CSV file yields one sheet named after the file stem.
func Open(path string) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		s, err := ReadCSV(Stem(path), f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []Sheet{s}, nil
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type '%s', must be csv or xlsx", filepath.Ext(path))
	}
}

// ReadCSV reads a comma separated grid. Records may have any number of fields.
func ReadCSV(name string, r io.Reader) (Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	s := Sheet{Name: name}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("error reading CSV: %w", err)
		}
		s.Cells = append(s.Cells, normalizeRow(record))
	}
	return s, nil
}

// ReadXLSX reads every worksheet of a workbook in workbook order.
func ReadXLSX(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		cells := make([][]string, len(rows))
		for i, row := range rows {
			cells[i] = normalizeRow(row)
		}
		sheets = append(sheets, Sheet{Name: name, Cells: cells})
	}
	return sheets, nil
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = norm.NFC.String(strings.TrimSpace(cell))
	}
	return out
}
