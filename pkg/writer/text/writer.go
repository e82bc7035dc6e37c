// Package text renders classification results as terminal tables
package text

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/ChrisMcGann/RamanKey/pkg/writer/sqlite"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C0C0C0")).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	highlightStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	decisionStyle  = cellStyle.Italic(true)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

// Writer renders each results table to an output stream
type Writer struct {
	out io.Writer
}

// NewWriter creates a terminal writer on out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteTable renders one batch. Cells above the threshold are bold red.
func (w *Writer) WriteTable(rt *core.ResultsTable) error {
	_, err := fmt.Fprintf(w.out, "%s\n%s\n\n", titleStyle.Render(rt.Batch), Render(rt))
	return err
}

// Close is a no-op; the stream belongs to the caller
func (w *Writer) Close() error {
	return nil
}

// Render lays a results table out as a bordered grid
func Render(rt *core.ResultsTable) string {
	records := rt.Records()
	decisionRow := len(records) - 2 // index among data rows

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(records[0]...).
		Rows(records[1:]...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == decisionRow:
				return decisionStyle
			case col > 0 && row < len(rt.Types) && col-1 < len(rt.Samples) && rt.Highlight(row, col-1):
				return highlightStyle
			}
			return cellStyle
		})

	return t.String()
}

// RenderRuns lists stored runs, one row per run with its classified types
func RenderRuns(runs []sqlite.RunSummary) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID,
			r.CreationDate,
			r.Reference,
			fmt.Sprintf("%g", r.Tolerance),
			fmt.Sprintf("%g", r.Threshold),
			fmt.Sprintf("%d/%d", r.Succeeded, r.Succeeded+r.Failed),
			fmt.Sprintf("%d/%d", r.Classified, r.Samples),
			formatByType(r.ByType),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Run", "Created", "Reference", "Tolerance", "Threshold", "Batches", "Classified", "Types").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String()
}

func formatByType(byType map[string]int) string {
	names := make([]string, 0, len(byType))
	for name := range byType {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, byType[name])
	}
	return strings.Join(parts, " ")
}
