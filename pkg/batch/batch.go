// Package batch drives the matching pipeline over batches of samples:
// extraction, peak matching, aggregation and classification per batch, with
// failures isolated to the batch they occur in.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/ChrisMcGann/RamanKey/pkg/extract"
	"github.com/ChrisMcGann/RamanKey/pkg/filter"
	"github.com/ChrisMcGann/RamanKey/pkg/match"
	"golang.org/x/sync/errgroup"
)

// Options configures a run.
type Options struct {
	Tolerance match.Tolerance
	Threshold float64
	Extract   extract.Options
	Filter    filter.Config
	FailFast  bool // Stop at the first failed batch instead of reporting and continuing
	Workers   int  // Batches processed concurrently; values below 2 run sequentially
}

// Input is one raw batch listing.
type Input struct {
	Name string
	Rows []core.Row
}

// Result is the outcome of one batch. Exactly one of Table and Err is set.
type Result struct {
	Name     string
	Table    *core.ResultsTable
	Warnings []error
	Err      error
}

// Report collects every batch result in input order.
type Report struct {
	Results   []Result
	Succeeded int
	Failed    int
}

// Summary renders the run summary line.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d batches: %d succeeded, %d failed", len(r.Results), r.Succeeded, r.Failed)
}

// Tables returns the results tables of the successful batches.
func (r *Report) Tables() []*core.ResultsTable {
	var out []*core.ResultsTable
	for _, res := range r.Results {
		if res.Table != nil {
			out = append(out, res.Table)
		}
	}
	return out
}

// Runner processes batches against one reference table. The reference table is
// only read, so a Runner may process batches concurrently.
type Runner struct {
	ref     *core.ReferenceTable
	opts    Options
	matcher *match.Matcher
	logger  *slog.Logger
}

// NewRunner creates a runner. The reference table must come from
// core.NewReferenceTable so its valid peak counts are non-zero.
func NewRunner(ref *core.ReferenceTable, opts Options, logger *slog.Logger) (*Runner, error) {
	if ref == nil {
		return nil, errors.New("reference table is required")
	}
	if opts.Tolerance.Abs < 0 || opts.Tolerance.Rel < 0 {
		return nil, fmt.Errorf("tolerance must not be negative")
	}
	if err := opts.Filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		ref:     ref,
		opts:    opts,
		matcher: match.NewMatcher(ref, opts.Tolerance),
		logger:  logger,
	}, nil
}

// ProcessBatch runs one batch end to end and returns its results table.
// Warnings (such as *core.EmptySampleWarning) do not fail the batch.
func (r *Runner) ProcessBatch(in Input) (*core.ResultsTable, []error, error) {
	samples, err := extract.Extract(in.Name, in.Rows, r.opts.Extract)
	if err != nil {
		return nil, nil, err
	}

	var warnings []error
	results := make([]core.SampleResult, 0, len(samples))
	for i := range samples {
		s := &samples[i]
		if r.opts.Filter.Enabled() {
			if err := r.opts.Filter.Apply(s); err != nil {
				return nil, warnings, fmt.Errorf("batch %q: sample %q: %w", in.Name, s.ID, err)
			}
		}
		if err := s.Validate(); err != nil {
			return nil, warnings, fmt.Errorf("batch %q: sample %d: %w", in.Name, i+1, err)
		}
		if len(s.Peaks) == 0 {
			warnings = append(warnings, &core.EmptySampleWarning{Batch: in.Name, Sample: s.ID})
		}
		results = append(results, r.matcher.Score(s))
	}

	// Classify once every column is assembled
	table := core.NewResultsTable(in.Name, r.ref.Types, r.opts.Threshold)
	for _, res := range results {
		table.AddColumn(res, match.Classify(res, r.ref.Types, r.opts.Threshold))
	}

	return table, warnings, nil
}

// Run processes every batch. In fail-soft mode each failure is logged and
// recorded and the remaining batches still run. In fail-fast mode the first
// failure in input order is returned along with the partial report.
func (r *Runner) Run(inputs []Input) (*Report, error) {
	results := make([]Result, len(inputs))

	if r.opts.Workers > 1 {
		r.runParallel(inputs, results)
	} else {
		for i, in := range inputs {
			results[i] = r.process(in)
			if results[i].Err != nil && r.opts.FailFast {
				results = results[:i+1]
				break
			}
		}
	}

	report := &Report{}
	var first error
	for _, res := range results {
		if res.Table == nil && res.Err == nil {
			// never scheduled after a fail-fast stop
			continue
		}
		report.Results = append(report.Results, res)
		if res.Err != nil {
			report.Failed++
			if first == nil {
				first = res.Err
			}
			continue
		}
		report.Succeeded++
	}

	if r.opts.FailFast && first != nil {
		return report, fmt.Errorf("aborting run: %w", first)
	}
	return report, nil
}

func (r *Runner) runParallel(inputs []Input, results []Result) {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(r.opts.Workers)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = r.process(in)
			if results[i].Err != nil && r.opts.FailFast {
				return results[i].Err
			}
			return nil
		})
	}
	// failures are carried in results
	_ = g.Wait()
}

func (r *Runner) process(in Input) Result {
	table, warnings, err := r.ProcessBatch(in)
	res := Result{Name: in.Name, Table: table, Warnings: warnings, Err: err}

	for _, w := range warnings {
		r.logger.Warn("empty sample", slog.String("batch", in.Name), slog.String("warning", w.Error()))
	}

	if err != nil {
		r.logger.Error("batch failed", slog.String("batch", in.Name), slog.String("error", err.Error()))
		return res
	}

	r.logger.Info("batch processed",
		slog.String("batch", in.Name),
		slog.Int("samples", len(table.Samples)),
		slog.Int("classified", table.Classified()))
	return res
}
