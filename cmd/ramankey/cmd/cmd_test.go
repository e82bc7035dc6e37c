package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/RamanKey/pkg/batch"
	"github.com/ChrisMcGann/RamanKey/pkg/config"
	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/ChrisMcGann/RamanKey/pkg/writer/sqlite"
)

const referenceCSV = `Name,A,B
count,2,1
p1,100,200
p2,150,
`

const goodBatch = `Spectrum:,unknown
,
,
Raman shift [1/cm],Intensity
101,500
151,300
,
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", goodBatch)
	b := writeFile(t, dir, "nested/deep/b.csv", goodBatch)
	writeFile(t, dir, "notes.txt", "x")

	paths, err := expandInputs([]string{filepath.Join(dir, "**", "*.csv"), a})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, paths)

	_, err = expandInputs([]string{filepath.Join(dir, "*.xlsx")})
	assert.Error(t, err)
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "day1.csv", goodBatch)

	xlsxPath := filepath.Join(dir, "days.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "day2"))
	_, err := f.NewSheet("day3")
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	inputs, err := readInputs([]string{csvPath, xlsxPath})
	require.NoError(t, err)

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	assert.Equal(t, []string{"day1", "day2", "day3"}, names)
	assert.NotEmpty(t, inputs[0].Rows)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "WARN")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger(&buf, "loud")
	assert.Error(t, err)
}

type recordingWriter struct {
	tables   []string
	failures []string
}

func (w *recordingWriter) WriteTable(table *core.ResultsTable) error {
	w.tables = append(w.tables, table.Batch)
	return nil
}

func (w *recordingWriter) WriteFailure(batch string, cause error) error {
	w.failures = append(w.failures, batch)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestWriteReport(t *testing.T) {
	report := &batch.Report{Results: []batch.Result{
		{Name: "ok", Table: core.NewResultsTable("ok", []string{"A"}, 50)},
		{Name: "bad", Err: errors.New("no samples")},
	}}

	w := &recordingWriter{}
	require.NoError(t, writeReport(w, report))
	assert.Equal(t, []string{"ok"}, w.tables)
	assert.Equal(t, []string{"bad"}, w.failures)
}

func TestDescribeOutput(t *testing.T) {
	dir := t.TempDir()

	db, err := openOutput(filepath.Join(dir, "results.db"), sqlite.RunInfo{})
	require.NoError(t, err)
	defer db.Close()
	runID := db.(*sqlite.Writer).RunID()
	require.NotEmpty(t, runID)
	assert.Equal(t, "Output: results.db (run "+runID+")", describeOutput(db, "results.db"))

	assert.Equal(t, "Output: results.xlsx", describeOutput(&recordingWriter{}, "results.xlsx"))
}

func TestOpenOutputRejectsUnknownExtension(t *testing.T) {
	_, err := openOutput(filepath.Join(t.TempDir(), "results.json"), sqlite.RunInfo{})
	assert.Error(t, err)
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	ref := writeFile(t, dir, "reference.csv", referenceCSV)
	writeFile(t, dir, "batches/good.csv", goodBatch)
	writeFile(t, dir, "batches/empty.csv", "Raman shift [1/cm],Intensity\n101,500\n")
	xlsxOut := filepath.Join(dir, "results.xlsx")
	dbOut := filepath.Join(dir, "results.db")

	rootCmd.SetArgs([]string{
		"match",
		"--log-level", "error",
		"--reference", ref,
		"--in", filepath.Join(dir, "batches", "*.csv"),
		"--out", xlsxOut,
		"--out", dbOut,
		"--atol", "2",
	})
	require.NoError(t, rootCmd.Execute())

	f, err := excelize.OpenFile(xlsxOut)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"good"}, f.GetSheetList())

	decision, err := f.GetCellValue("good", "B4")
	require.NoError(t, err)
	assert.Equal(t, "A", decision)

	runs, err := sqlite.ListRuns(dbOut)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Succeeded)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 2.0, runs[0].Tolerance)
	assert.Equal(t, map[string]int{"A": 1}, runs[0].ByType)

	rootCmd.SetArgs([]string{"summarize", dbOut})
	require.NoError(t, rootCmd.Execute())
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramankey.toml")

	rootCmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, rootCmd.Execute())

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	// refuses to overwrite without --force
	rootCmd.SetArgs([]string{"config", "init", path})
	assert.Error(t, rootCmd.Execute())
}

func TestReferenceCommandRejectsMalformedTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.csv", "A,B\nx,y\n100,\n")

	rootCmd.SetArgs([]string{"reference", path})
	err := rootCmd.Execute()
	require.Error(t, err)

	var malformed *core.MalformedReferenceError
	assert.True(t, errors.As(err, &malformed))
}
