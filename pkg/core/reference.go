package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel marks an unused reference slot.
const Sentinel = 0.0

// ReferenceTable holds the expected peak positions per polymer type.
// Rows are reference slots, columns are types in library order.
type ReferenceTable struct {
	Types          []string    // Polymer type names, column order
	Labels         []string    // Metadata row, one entry per type (never a peak)
	Peaks          [][]float64 // Peaks[row][type], Sentinel for unused slots
	ValidPeakCount []int       // Non-sentinel entries per type
}

// NewReferenceTable builds a reference table and computes the valid peak count per
// type. It fails with *MalformedReferenceError when a type could never be scored.
func NewReferenceTable(types, labels []string, peaks [][]float64) (*ReferenceTable, error) {
	if len(types) == 0 {
		return nil, &MalformedReferenceError{Reason: "no polymer types"}
	}

	seen := make(map[string]bool, len(types))
	for _, name := range types {
		if strings.TrimSpace(name) == "" {
			return nil, &MalformedReferenceError{Reason: "blank polymer type name"}
		}
		if seen[name] {
			return nil, &MalformedReferenceError{Type: name, Reason: "duplicate polymer type"}
		}
		seen[name] = true
	}

	if labels == nil {
		labels = make([]string, len(types))
	}
	if len(labels) != len(types) {
		return nil, &MalformedReferenceError{
			Reason: fmt.Sprintf("label row has %d entries, expected %d", len(labels), len(types)),
		}
	}

	rows := make([][]float64, len(peaks))
	counts := make([]int, len(types))
	for i, row := range peaks {
		if len(row) > len(types) {
			return nil, &MalformedReferenceError{
				Reason: fmt.Sprintf("row %d has %d entries, expected at most %d", i, len(row), len(types)),
			}
		}
		// short rows are padded with the sentinel
		padded := make([]float64, len(types))
		copy(padded, row)
		for j, v := range padded {
			if v != Sentinel {
				counts[j]++
			}
		}
		rows[i] = padded
	}

	for j, n := range counts {
		if n == 0 {
			return nil, &MalformedReferenceError{Type: types[j], Reason: "no valid reference peaks"}
		}
	}

	return &ReferenceTable{
		Types:          append([]string(nil), types...),
		Labels:         append([]string(nil), labels...),
		Peaks:          rows,
		ValidPeakCount: counts,
	}, nil
}

// NumTypes returns the number of polymer types.
func (t *ReferenceTable) NumTypes() int {
	return len(t.Types)
}

// Column returns the valid (non-sentinel) reference peaks of type i.
func (t *ReferenceTable) Column(i int) []float64 {
	var out []float64
	for _, row := range t.Peaks {
		if row[i] != Sentinel {
			out = append(out, row[i])
		}
	}
	return out
}

// DeclaredCount parses the label row entry of type i as a peak count.
// ok is false when the label is not numeric.
func (t *ReferenceTable) DeclaredCount(i int) (n int, ok bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Labels[i]), 64)
	if err != nil || v < 0 || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}
