// Package xlsx writes classification results to Excel workbooks
package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/xuri/excelize/v2"
)

const (
	// Excel limits sheet names to 31 characters
	maxSheetName = 31
	// Highlight style applied to cells above the threshold
	highlightFill = "FFFF00"
	highlightFont = "FF0000"
	// Default sheet of a new workbook, renamed out of the way until the first
	// table is written
	defaultSheet     = "Sheet1"
	placeholderSheet = "~ramankey"
	// Cell values are written with two decimals
	cellPrecision = 2
)

// Characters Excel rejects in sheet names
var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")",
)

// Writer handles writing results tables to one workbook, one sheet per batch
type Writer struct {
	file       *excelize.File
	outputPath string
	highlight  int
	sheets     int
	names      map[string]bool
}

// NewWriter creates a new workbook writer
func NewWriter(outputPath string) (*Writer, error) {
	f := excelize.NewFile()

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{highlightFill}},
		Font: &excelize.Font{Color: highlightFont},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create highlight style: %w", err)
	}

	if err := f.SetSheetName(defaultSheet, placeholderSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	return &Writer{
		file:       f,
		outputPath: outputPath,
		highlight:  style,
		names:      map[string]bool{placeholderSheet: true},
	}, nil
}

// WriteTable writes one batch as a worksheet: header row, one row per polymer
// type with percentages, and the trailing decision row. Cells whose written
// value is above the threshold are highlighted.
func (w *Writer) WriteTable(table *core.ResultsTable) error {
	name := w.sheetName(table.Batch)

	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	if w.sheets == 0 {
		if err := w.file.DeleteSheet(placeholderSheet); err != nil {
			return fmt.Errorf("failed to remove placeholder sheet: %w", err)
		}
		idx, err := w.file.GetSheetIndex(name)
		if err != nil {
			return fmt.Errorf("failed to locate sheet %q: %w", name, err)
		}
		w.file.SetActiveSheet(idx)
	}
	w.sheets++

	header := make([]interface{}, 0, len(table.Samples)+1)
	header = append(header, "Name")
	for _, s := range table.Samples {
		header = append(header, s)
	}
	if err := w.file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, typeName := range table.Types {
		row := make([]interface{}, 0, len(table.Samples)+1)
		row = append(row, typeName)
		for j := range table.Samples {
			row = append(row, core.RoundFloat(table.Cell(i, j), cellPrecision))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %q: %w", typeName, err)
		}

		for j := range table.Samples {
			if core.RoundFloat(table.Cell(i, j), cellPrecision) <= table.Threshold {
				continue
			}
			target, err := excelize.CoordinatesToCellName(j+2, i+2)
			if err != nil {
				return err
			}
			if err := w.file.SetCellStyle(name, target, target, w.highlight); err != nil {
				return fmt.Errorf("failed to highlight %s: %w", target, err)
			}
		}
	}

	decision := make([]interface{}, 0, len(table.Samples)+1)
	decision = append(decision, core.DecisionRowName)
	for _, label := range table.DecisionRow() {
		decision = append(decision, label)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(table.Types)+2)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(name, cell, &decision); err != nil {
		return fmt.Errorf("failed to write decision row: %w", err)
	}

	return nil
}

// sheetName derives a unique, valid sheet name from a batch name. Sheet names
// are compared case-insensitively, as Excel does.
func (w *Writer) sheetName(batch string) string {
	base := []rune(sheetNameReplacer.Replace(batch))
	if len(base) == 0 {
		base = []rune("batch")
	}
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	name := string(base)
	for n := 2; w.names[strings.ToLower(name)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		cut := base
		if len(cut)+len(suffix) > maxSheetName {
			cut = cut[:maxSheetName-len(suffix)]
		}
		name = string(cut) + suffix
	}
	w.names[strings.ToLower(name)] = true
	return name
}

// Close saves the workbook. A workbook without any table is not written.
func (w *Writer) Close() error {
	defer w.file.Close()

	if w.sheets == 0 {
		return nil
	}
	if err := w.file.SaveAs(w.outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
