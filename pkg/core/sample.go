// Package core provides the intermediate representation (IR) models and validation logic
// for Raman peak listings, polymer reference tables and classification results.
package core

import (
	"fmt"
	"math"
	"strings"
)

// Peak represents a single detected Raman peak.
type Peak struct {
	Shift     float64 // Raman shift in cm-1
	Intensity float64 // Peak height after baseline removal (0 if unknown)
	FWHM      float64 // Full width at half maximum (0 if unknown)
}

// Row is one raw record of a batch listing, before segmentation.
type Row struct {
	Position string // Raman shift, a marker string or a header remnant
	Label    string // Intensity, or the sample name on marker rows
	FWHM     string
	Line     int // 1-based row number in the source sheet (0 for synthetic rows)
}

// Sample is one measured spectrum reduced to its detected peaks.
type Sample struct {
	ID    string
	Peaks []Peak
}

// Positions returns the peak shifts in listing order.
func (s *Sample) Positions() []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = p.Shift
	}
	return out
}

// Validate checks that a sample carries an identifier and finite peak positions.
func (s *Sample) Validate() error {
	var errs []string

	if strings.TrimSpace(s.ID) == "" {
		errs = append(errs, "sample id is required")
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.Shift) || math.IsInf(peak.Shift, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid Raman shift", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Sample",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
