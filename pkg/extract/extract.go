// Package extract splits a batch listing into samples. A listing is an ordered
// sequence of rows where a marker row ("Spectrum:", <sample name>) opens each
// sample, followed by header remnants, detected peak rows and blank filler.
package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/ChrisMcGann/RamanKey/pkg/reader/sheet"
)

const (
	// DefaultMarker opens a new sample in the position column.
	DefaultMarker = "Spectrum:"
	// DefaultFiller names the synthetic terminal marker.
	DefaultFiller = "Filler"
)

// Options controls segmentation of a batch listing.
type Options struct {
	Marker       string // Literal marker in the position column
	Filler       string // Label of the synthetic terminal marker
	SkipLeading  int    // Rows dropped after each marker
	SkipTrailing int    // Rows dropped before the next marker
}

// DefaultOptions returns options matching the listings written by the peak
// detection step.
func DefaultOptions() Options {
	return Options{
		Marker: DefaultMarker,
		Filler: DefaultFiller,
	}
}

// Segment is the rows belonging to one sample, marker excluded.
type Segment struct {
	SampleID string
	Rows     []core.Row
}

// ParseRows reads the first three columns of every sheet row as
// (position, label, fwhm).
func ParseRows(s *sheet.Sheet) []core.Row {
	rows := make([]core.Row, len(s.Cells))
	for i := range s.Cells {
		rows[i] = core.Row{
			Position: s.Cell(i, 0),
			Label:    s.Cell(i, 1),
			FWHM:     s.Cell(i, 2),
			Line:     i + 1,
		}
	}
	return rows
}

// Segments delimits samples. A synthetic terminal marker is appended first so
// the last sample is closed like every other one. Rows before the first marker
// belong to no sample.
func Segments(batch string, rows []core.Row, opts Options) ([]Segment, error) {
	opts = opts.withDefaults()

	stream := make([]core.Row, 0, len(rows)+1)
	stream = append(stream, rows...)
	stream = append(stream, core.Row{Position: opts.Marker, Label: opts.Filler})

	var markers []int
	for i, row := range stream {
		if row.Position == opts.Marker {
			markers = append(markers, i)
		}
	}
	// the synthetic marker alone means the listing had none
	if len(markers) < 2 {
		return nil, &core.NoSamplesFoundError{Batch: batch, Marker: opts.Marker}
	}

	segments := make([]Segment, 0, len(markers)-1)
	for k := 0; k+1 < len(markers); k++ {
		start, end := markers[k]+1, markers[k+1]
		segments = append(segments, Segment{
			SampleID: stream[markers[k]].Label,
			Rows:     trim(stream[start:end], opts.SkipLeading, opts.SkipTrailing),
		})
	}
	return segments, nil
}

// Samples converts segments into samples. Rows whose position is not a number
// (column headers, blank filler) are structural and skipped.
func Samples(segments []Segment) []core.Sample {
	samples := make([]core.Sample, 0, len(segments))
	for _, seg := range segments {
		s := core.Sample{ID: seg.SampleID}
		for _, row := range seg.Rows {
			peak, ok := parsePeak(row)
			if !ok {
				continue
			}
			s.Peaks = append(s.Peaks, peak)
		}
		samples = append(samples, s)
	}
	return samples
}

// Extract runs Segments and Samples for one batch.
func Extract(batch string, rows []core.Row, opts Options) ([]core.Sample, error) {
	segments, err := Segments(batch, rows, opts)
	if err != nil {
		return nil, err
	}
	return Samples(segments), nil
}

func (o Options) withDefaults() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Filler == "" {
		o.Filler = DefaultFiller
	}
	return o
}

func trim(rows []core.Row, leading, trailing int) []core.Row {
	if leading < 0 {
		leading = 0
	}
	if trailing < 0 {
		trailing = 0
	}
	if leading+trailing >= len(rows) {
		return nil
	}
	return rows[leading : len(rows)-trailing]
}

func parsePeak(row core.Row) (core.Peak, bool) {
	shift, err := strconv.ParseFloat(strings.TrimSpace(row.Position), 64)
	if err != nil || math.IsNaN(shift) || math.IsInf(shift, 0) {
		return core.Peak{}, false
	}
	// intensity and FWHM are informational; unparsable values stay zero
	return core.Peak{Shift: shift, Intensity: finiteOrZero(row.Label), FWHM: finiteOrZero(row.FWHM)}, true
}

func finiteOrZero(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
