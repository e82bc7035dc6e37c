package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	in := "Spectrum:,PET_01\n,\nRaman shift [1/cm],Intensity\n 1615.2 ,820.5,12\n"
	s, err := ReadCSV("batch", strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, "batch", s.Name)
	assert.Len(t, s.Cells, 4)
	assert.Equal(t, "1615.2", s.Cell(3, 0))
	assert.Equal(t, "12", s.Cell(3, 2))
	assert.Equal(t, "", s.Cell(0, 5))
	assert.Equal(t, "", s.Cell(9, 0))
	assert.Equal(t, 3, s.Width())
}

func TestReadCSV_NormalizesUnicode(t *testing.T) {
	// "e" + combining acute accent becomes the precomposed form
	s, err := ReadCSV("b", strings.NewReader("polye\u0301ster\n"))
	require.NoError(t, err)
	assert.Equal(t, "poly\u00e9ster", s.Cell(0, 0))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv file is one sheet named by stem", func(t *testing.T) {
		path := filepath.Join(dir, "run_07.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

		sheets, err := Open(path)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, "run_07", sheets[0].Name)
	})

	t.Run("xlsx keeps worksheet order", func(t *testing.T) {
		path := filepath.Join(dir, "batches.xlsx")
		f := excelize.NewFile()
		_, err := f.NewSheet("second")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Spectrum:"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "S1"))
		require.NoError(t, f.SetCellValue("second", "A2", 1062.5))
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		sheets, err := Open(path)
		require.NoError(t, err)
		require.Len(t, sheets, 2)
		assert.Equal(t, "Sheet1", sheets[0].Name)
		assert.Equal(t, "S1", sheets[0].Cell(0, 1))
		assert.Equal(t, "second", sheets[1].Name)
		assert.Equal(t, "1062.5", sheets[1].Cell(1, 0))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "spectra.txt"))
		assert.Error(t, err)
	})
}
