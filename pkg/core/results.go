package core

import "fmt"

// DecisionRowName labels the trailing classification row of a results table.
const DecisionRowName = "Poly type"

// MatchVector flags, per polymer type, whether a detected peak lies within
// tolerance of at least one reference peak of that type.
type MatchVector []bool

// SampleResult is the match percentage of one sample against every type.
type SampleResult struct {
	SampleID string
	Matched  []int     // Detected peaks matching each type
	Percent  []float64 // 100 * Matched / ValidPeakCount, not clamped
}

// Decision is the classification of one sample.
type Decision struct {
	Type       string  // Winning type, empty when unclassified
	Index      int     // Column of the winning type, -1 when unclassified
	Max        float64 // Highest percentage seen, even when unclassified
	Classified bool
}

// Label returns the decision as written in the decision row.
func (d Decision) Label() string {
	if !d.Classified {
		return ""
	}
	return d.Type
}

// ResultsTable is the per-batch output: rows are polymer types, columns are
// samples in encounter order, plus one trailing decision row.
type ResultsTable struct {
	Batch     string
	Types     []string
	Samples   []string
	Percent   [][]float64 // Percent[type][sample]
	Decisions []Decision  // One per sample
	Threshold float64
}

// NewResultsTable allocates an empty table for the given types.
func NewResultsTable(batch string, types []string, threshold float64) *ResultsTable {
	return &ResultsTable{
		Batch:     batch,
		Types:     append([]string(nil), types...),
		Percent:   make([][]float64, len(types)),
		Threshold: threshold,
	}
}

// AddColumn appends one sample's result and decision.
func (t *ResultsTable) AddColumn(res SampleResult, d Decision) {
	t.Samples = append(t.Samples, res.SampleID)
	for i := range t.Types {
		t.Percent[i] = append(t.Percent[i], res.Percent[i])
	}
	t.Decisions = append(t.Decisions, d)
}

// Cell returns the percentage of type row i for sample column j.
func (t *ResultsTable) Cell(i, j int) float64 {
	return t.Percent[i][j]
}

// FormatCell renders a cell with two decimals.
func (t *ResultsTable) FormatCell(i, j int) string {
	return fmt.Sprintf("%.2f", t.Percent[i][j])
}

// Highlight reports whether a cell is strictly above the threshold.
// Export layers use it for per-cell emphasis.
func (t *ResultsTable) Highlight(i, j int) bool {
	return t.Percent[i][j] > t.Threshold
}

// DecisionRow returns the winning type label per sample, blank when unclassified.
func (t *ResultsTable) DecisionRow() []string {
	out := make([]string, len(t.Decisions))
	for j, d := range t.Decisions {
		out[j] = d.Label()
	}
	return out
}

// Records renders the table as string rows: a header ("Name" + sample ids),
// one row per type and the trailing decision row.
func (t *ResultsTable) Records() [][]string {
	records := make([][]string, 0, len(t.Types)+2)

	header := append([]string{"Name"}, t.Samples...)
	records = append(records, header)

	for i, name := range t.Types {
		row := make([]string, 0, len(t.Samples)+1)
		row = append(row, name)
		for j := range t.Samples {
			row = append(row, t.FormatCell(i, j))
		}
		records = append(records, row)
	}

	records = append(records, append([]string{DecisionRowName}, t.DecisionRow()...))
	return records
}

// Classified counts the samples that received a type.
func (t *ResultsTable) Classified() int {
	n := 0
	for _, d := range t.Decisions {
		if d.Classified {
			n++
		}
	}
	return n
}
