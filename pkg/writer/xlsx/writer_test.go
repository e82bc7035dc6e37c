package xlsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func table(batch string) *core.ResultsTable {
	t := core.NewResultsTable(batch, []string{"A", "B"}, 50)
	t.AddColumn(
		core.SampleResult{SampleID: "s1", Percent: []float64{50, 100}},
		core.Decision{Type: "B", Index: 1, Max: 100, Classified: true},
	)
	t.AddColumn(
		core.SampleResult{SampleID: "s2", Percent: []float64{33.333333, 0}},
		core.Decision{Index: -1, Max: 33.333333},
	)
	return t
}

func TestWriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table("sheet1")))
	require.NoError(t, w.WriteTable(table("sheet2")))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"sheet1", "sheet2"}, f.GetSheetList())

	rows, err := f.GetRows("sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "s1", "s2"}, rows[0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "Poly type", rows[3][0])
	assert.Equal(t, "B", rows[3][1])

	raw, err := f.GetCellValue("sheet1", "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "33.33", raw)

	// B3 (type B, sample s1) is above the threshold, B2 (50) is not
	highlighted, err := f.GetCellStyle("sheet1", "B3")
	require.NoError(t, err)
	plain, err := f.GetCellStyle("sheet1", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, plain, highlighted)
	assert.Equal(t, w.highlight, highlighted)
}

func TestWriteTable_CaseInsensitiveSheetNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	w, err := NewWriter(path)
	require.NoError(t, err)
	for _, batch := range []string{"Sheet1", "PET", "pet"} {
		tbl := table(batch)
		tbl.Samples[0] = batch + "_s"
		require.NoError(t, w.WriteTable(tbl))
	}
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sheet1", "PET", "pet_2"}, f.GetSheetList())

	// every batch kept its own data
	for sheet, want := range map[string]string{"Sheet1": "Sheet1_s", "PET": "PET_s", "pet_2": "pet_s"} {
		got, err := f.GetCellValue(sheet, "B1")
		require.NoError(t, err)
		assert.Equal(t, want, got, sheet)
	}
}

func TestWriteTable_HighlightFollowsWrittenValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	tbl := core.NewResultsTable("b", []string{"A"}, 33.33)
	tbl.AddColumn(core.SampleResult{SampleID: "third", Percent: []float64{100.0 / 3}}, core.Decision{Index: -1})
	tbl.AddColumn(core.SampleResult{SampleID: "more", Percent: []float64{33.34}}, core.Decision{Index: -1})

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(tbl))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// B2 reads 33.33, equal to the threshold once rounded
	plain, err := f.GetCellStyle("b", "B2")
	require.NoError(t, err)
	highlighted, err := f.GetCellStyle("b", "C2")
	require.NoError(t, err)
	assert.NotEqual(t, w.highlight, plain)
	assert.Equal(t, w.highlight, highlighted)
}

func TestSheetName(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "x.xlsx"))
	require.NoError(t, err)
	defer w.Close()

	long := strings.Repeat("n", 40)
	first := w.sheetName(long)
	second := w.sheetName(long)

	assert.Len(t, first, 31)
	assert.Len(t, second, 31)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, "_2"))
	assert.Equal(t, "batch", w.sheetName(""))
	assert.Equal(t, "BATCH_2", w.sheetName("BATCH"))
	assert.Equal(t, "~RamanKey_2", w.sheetName("~RamanKey"))
}

func TestCloseWithoutTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
