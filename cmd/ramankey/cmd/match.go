package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/RamanKey/pkg/batch"
	"github.com/ChrisMcGann/RamanKey/pkg/config"
	"github.com/ChrisMcGann/RamanKey/pkg/reader/reference"
)

var (
	// Flags for match command
	referenceFile string
	inPatterns    []string
	outTargets    []string
	tolerance     float64
	relTolerance  float64
	threshold     float64
	marker        string
	topN          int
	failFast      bool
	workers       int
	strict        bool
)

func init() {
	matchCmd.Flags().StringVarP(&referenceFile, "reference", "r", "", "Reference peak table, csv or xlsx (required)")
	matchCmd.Flags().StringArrayVarP(&inPatterns, "in", "i", nil, "Batch listing file or glob, csv or xlsx (repeatable, required)")
	matchCmd.Flags().StringArrayVarP(&outTargets, "out", "o", []string{"-"}, "Output: .xlsx workbook, .db/.sqlite database or - for the terminal (repeatable)")
	matchCmd.Flags().Float64Var(&tolerance, "atol", 5, "Absolute matching tolerance in cm-1")
	matchCmd.Flags().Float64Var(&relTolerance, "rtol", 0, "Relative matching tolerance (fraction of the reference position)")
	matchCmd.Flags().Float64Var(&threshold, "threshold", 50, "Minimum match percentage for a classification")
	matchCmd.Flags().StringVar(&marker, "marker", "Spectrum:", "Label that starts a new sample in batch listings")
	matchCmd.Flags().IntVar(&topN, "top-n", 0, "Keep only the top N most intense peaks per sample (0 = no limit)")
	matchCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Abort the run at the first failed batch")
	matchCmd.Flags().IntVar(&workers, "workers", 1, "Batches processed concurrently")
	matchCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any batch failed")

	matchCmd.MarkFlagRequired("reference")
	matchCmd.MarkFlagRequired("in")
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match batch peak listings against a reference table",
	Long: `Match the detected peaks of every sample in one or more batch listings
against a reference peak table and classify each sample.

Examples:
  # Classify one workbook, print results to the terminal
  ramankey match --reference reference.xlsx --in Summary.xlsx

  # Classify every CSV listing below data/, write a workbook and a database
  ramankey match -r reference.csv -i 'data/**/*.csv' -o results.xlsx -o results.db

  # Tighter tolerance and threshold, abort on the first bad batch
  ramankey match -r reference.xlsx -i Summary.xlsx --atol 2 --threshold 70 --fail-fast`,
	RunE: runMatch,
}

// flagOverrides collects the match flags that were set explicitly
func flagOverrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("atol") {
		o.Tolerance = &tolerance
	}
	if flags.Changed("rtol") {
		o.RelTolerance = &relTolerance
	}
	if flags.Changed("threshold") {
		o.Threshold = &threshold
	}
	if flags.Changed("marker") {
		o.Marker = &marker
	}
	if flags.Changed("top-n") {
		o.TopN = &topN
	}
	if flags.Changed("fail-fast") {
		o.FailFast = &failFast
	}
	if flags.Changed("workers") {
		o.Workers = &workers
	}
	return o
}

func runMatch(cmd *cobra.Command, args []string) error {
	logger, err := stderrLogger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Merge(flagOverrides(cmd))
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Validate reference file exists
	if _, err := os.Stat(referenceFile); os.IsNotExist(err) {
		return fmt.Errorf("reference file does not exist: %s", referenceFile)
	}

	ref, err := reference.Load(referenceFile, logger)
	if err != nil {
		return fmt.Errorf("failed to load reference table: %w", err)
	}
	fmt.Printf("Loaded reference table %s: %d polymer types\n", referenceFile, ref.NumTypes())

	paths, err := expandInputs(inPatterns)
	if err != nil {
		return err
	}
	inputs, err := readInputs(paths)
	if err != nil {
		return err
	}
	fmt.Printf("Matching %d batches from %d files...\n", len(inputs), len(paths))
	fmt.Printf("Tolerance: %g cm-1\n", cfg.Match.Tolerance)
	if cfg.Match.RelTolerance > 0 {
		fmt.Printf("Relative tolerance: %g\n", cfg.Match.RelTolerance)
	}
	fmt.Printf("Threshold: %g%%\n", cfg.Match.Threshold)

	runner, err := batch.NewRunner(ref, cfg.BatchOptions(), logger)
	if err != nil {
		return err
	}

	report, runErr := runner.Run(inputs)

	// Partial results of an aborted run are still written
	if report != nil {
		if err := writeOutputs(outTargets, report, cfg, referenceFile); err != nil {
			return err
		}
		fmt.Printf("\n%s\n", report.Summary())
	}

	if runErr != nil {
		return runErr
	}
	if strict && report.Failed > 0 {
		return errors.New("one or more batches failed")
	}
	return nil
}
