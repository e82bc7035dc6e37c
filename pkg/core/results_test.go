package core

import (
	"reflect"
	"testing"
)

func TestResultsTableRecords(t *testing.T) {
	table := NewResultsTable("sheet1", []string{"A", "B"}, 50)
	table.AddColumn(
		SampleResult{SampleID: "s1", Percent: []float64{50, 100}},
		Decision{Type: "B", Index: 1, Max: 100, Classified: true},
	)
	table.AddColumn(
		SampleResult{SampleID: "s2", Percent: []float64{12.5, 0}},
		Decision{Type: "A", Index: 0, Max: 12.5},
	)

	want := [][]string{
		{"Name", "s1", "s2"},
		{"A", "50.00", "12.50"},
		{"B", "100.00", "0.00"},
		{"Poly type", "B", ""},
	}
	if got := table.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("Records() = %v, want %v", got, want)
	}

	if table.Classified() != 1 {
		t.Errorf("Classified() = %d, want 1", table.Classified())
	}
}

func TestResultsTableHighlightIsStrict(t *testing.T) {
	table := NewResultsTable("b", []string{"A"}, 50)
	table.AddColumn(SampleResult{SampleID: "eq", Percent: []float64{50}}, Decision{})
	table.AddColumn(SampleResult{SampleID: "gt", Percent: []float64{50.01}}, Decision{})

	if table.Highlight(0, 0) {
		t.Error("value equal to threshold should not be highlighted")
	}
	if !table.Highlight(0, 1) {
		t.Error("value above threshold should be highlighted")
	}
}
