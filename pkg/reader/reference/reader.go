// Package reference loads polymer reference peak tables
package reference

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/ChrisMcGann/RamanKey/pkg/reader/sheet"
)

// NameColumn is the header of the optional row-label column, which is dropped.
const NameColumn = "Name"

// Load reads the first sheet of a CSV or XLSX reference file.
func Load(path string, logger *slog.Logger) (*core.ReferenceTable, error) {
	sheets, err := sheet.Open(path)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, &core.MalformedReferenceError{Reason: "file has no sheets"}
	}
	return Parse(&sheets[0], logger)
}

// Parse converts a sheet into a reference table.
//
// Layout: row 0 holds the polymer type names, row 1 is a metadata row (a label
// or a declared peak count per type) and is never treated as a peak, rows 2..
// hold reference peak positions. Blank cells are unused slots.
func Parse(s *sheet.Sheet, logger *slog.Logger) (*core.ReferenceTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(s.Cells) == 0 {
		return nil, &core.MalformedReferenceError{Reason: "missing header row"}
	}

	// Map sheet columns to type columns, skipping the row-label column
	var cols []int
	var types []string
	for j := 0; j < s.Width(); j++ {
		name := s.Cell(0, j)
		if strings.EqualFold(name, NameColumn) {
			continue
		}
		if name == "" {
			// trailing blank header cells are spreadsheet padding
			if columnIsBlank(s, j) {
				continue
			}
			return nil, &core.MalformedReferenceError{
				Reason: fmt.Sprintf("column %d has values but no type name", j+1),
			}
		}
		cols = append(cols, j)
		types = append(types, name)
	}

	labels := make([]string, len(cols))
	for k, j := range cols {
		labels[k] = s.Cell(1, j)
	}

	var peaks [][]float64
	for i := 2; i < len(s.Cells); i++ {
		row := make([]float64, len(cols))
		for k, j := range cols {
			cell := s.Cell(i, j)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, type %q: invalid peak position '%s': %w", i+1, types[k], cell, err)
			}
			row[k] = v
		}
		peaks = append(peaks, row)
	}

	ref, err := core.NewReferenceTable(types, labels, peaks)
	if err != nil {
		return nil, err
	}

	for i, name := range ref.Types {
		if declared, ok := ref.DeclaredCount(i); ok && declared != ref.ValidPeakCount[i] {
			logger.Warn("declared peak count differs from reference peaks",
				slog.String("type", name),
				slog.Int("declared", declared),
				slog.Int("counted", ref.ValidPeakCount[i]))
		}
	}

	return ref, nil
}

func columnIsBlank(s *sheet.Sheet, j int) bool {
	for i := range s.Cells {
		if s.Cell(i, j) != "" {
			return false
		}
	}
	return true
}
