package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/ChrisMcGann/RamanKey/pkg/writer/sqlite"
)

func results() *core.ResultsTable {
	t := core.NewResultsTable("day1", []string{"PE", "PP"}, 50)
	t.AddColumn(
		core.SampleResult{SampleID: "s1", Percent: []float64{100, 25}},
		core.Decision{Type: "PE", Index: 0, Max: 100, Classified: true},
	)
	t.AddColumn(
		core.SampleResult{SampleID: "s2", Percent: []float64{12.5, 0}},
		core.Decision{Index: -1, Max: 12.5},
	)
	return t
}

func TestRender(t *testing.T) {
	out := Render(results())

	for _, want := range []string{"Name", "s1", "s2", "PE", "PP", "100.00", "12.50", "0.00", core.DecisionRowName} {
		assert.Contains(t, out, want)
	}

	// Decision row is the last row of the grid
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[len(lines)-2], core.DecisionRowName)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteTable(results()))
	require.NoError(t, w.Close())

	out := buf.String()
	assert.Contains(t, out, "day1")
	assert.Contains(t, out, "25.00")
}

func TestRenderRuns(t *testing.T) {
	out := RenderRuns([]sqlite.RunSummary{{
		RunID:      "run-1",
		Reference:  "ref.xlsx",
		Tolerance:  5,
		Threshold:  50,
		Succeeded:  2,
		Failed:     1,
		Samples:    4,
		Classified: 3,
		ByType:     map[string]int{"PP": 1, "PE": 2},
	}})

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "2/3")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "PE=2 PP=1")
}
