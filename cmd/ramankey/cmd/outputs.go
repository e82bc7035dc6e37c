package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/RamanKey/pkg/batch"
	"github.com/ChrisMcGann/RamanKey/pkg/config"
	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/ChrisMcGann/RamanKey/pkg/writer/sqlite"
	"github.com/ChrisMcGann/RamanKey/pkg/writer/text"
	"github.com/ChrisMcGann/RamanKey/pkg/writer/xlsx"
)

// tableWriter is implemented by every output
type tableWriter interface {
	WriteTable(table *core.ResultsTable) error
	Close() error
}

// failureWriter is implemented by outputs that record failed batches
type failureWriter interface {
	WriteFailure(batch string, cause error) error
}

func openOutput(target string, info sqlite.RunInfo) (tableWriter, error) {
	if target == "-" {
		return text.NewWriter(os.Stdout), nil
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".xlsx":
		return xlsx.NewWriter(target)
	case ".db", ".sqlite", ".sqlite3":
		return sqlite.NewWriter(target, info)
	default:
		return nil, fmt.Errorf("unsupported output '%s', must be .xlsx, .db, .sqlite or -", target)
	}
}

// writeOutputs writes the report to every target in order
func writeOutputs(targets []string, report *batch.Report, cfg *config.Config, ref string) error {
	info := sqlite.RunInfo{
		Reference:    ref,
		Tolerance:    cfg.Match.Tolerance,
		RelTolerance: cfg.Match.RelTolerance,
		Threshold:    cfg.Match.Threshold,
	}

	for _, target := range targets {
		w, err := openOutput(target, info)
		if err != nil {
			return fmt.Errorf("failed to create output %s: %w", target, err)
		}
		if err := writeReport(w, report); err != nil {
			w.Close()
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("failed to finalize %s: %w", target, err)
		}
		if target != "-" {
			fmt.Println(describeOutput(w, target))
		}
	}
	return nil
}

// describeOutput names a written target, with the run id for databases
func describeOutput(w tableWriter, target string) string {
	if db, ok := w.(*sqlite.Writer); ok {
		return fmt.Sprintf("Output: %s (run %s)", target, db.RunID())
	}
	return fmt.Sprintf("Output: %s", target)
}

func writeReport(w tableWriter, report *batch.Report) error {
	fw, recordsFailures := w.(failureWriter)
	for _, res := range report.Results {
		if res.Err != nil {
			if recordsFailures {
				if err := fw.WriteFailure(res.Name, res.Err); err != nil {
					return err
				}
			}
			continue
		}
		if err := w.WriteTable(res.Table); err != nil {
			return fmt.Errorf("batch %s: %w", res.Name, err)
		}
	}
	return nil
}
