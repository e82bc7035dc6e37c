package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ChrisMcGann/RamanKey/pkg/batch"
	"github.com/ChrisMcGann/RamanKey/pkg/extract"
	"github.com/ChrisMcGann/RamanKey/pkg/reader/sheet"
)

// expandInputs resolves files and ** globs to a sorted, de-duplicated file list
func expandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no input files match '%s'", pattern)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if seen[m] {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// readInputs turns every sheet of every file into one batch
func readInputs(paths []string) ([]batch.Input, error) {
	var inputs []batch.Input
	for _, path := range paths {
		sheets, err := sheet.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read batch file %s: %w", path, err)
		}
		for i := range sheets {
			inputs = append(inputs, batch.Input{
				Name: sheets[i].Name,
				Rows: extract.ParseRows(&sheets[i]),
			})
		}
	}
	return inputs, nil
}
