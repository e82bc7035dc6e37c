// Package filter provides peak filtering applied to samples before matching
package filter

import (
	"fmt"
	"sort"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
)

// Config holds filtering configuration. The zero value keeps every peak.
type Config struct {
	MinShift        float64 // Drop peaks below this shift (0 = no lower bound)
	MaxShift        float64 // Drop peaks above this shift (0 = no upper bound)
	IntensityCutoff float64 // Keep only peaks above this % of the base peak (0 = no cutoff)
	TopN            int     // Keep only top N most intense peaks (0 = no limit)
	PositiveOnly    bool    // Drop peaks with zero or negative shift
}

// Enabled reports whether any filter is configured.
func (c *Config) Enabled() bool {
	return c.MinShift != 0 || c.MaxShift != 0 || c.IntensityCutoff != 0 || c.TopN != 0 || c.PositiveOnly
}

// Validate checks the configured bounds.
func (c *Config) Validate() error {
	if c.MinShift < 0 || c.MaxShift < 0 {
		return fmt.Errorf("shift window must not be negative")
	}
	if c.MaxShift != 0 && c.MaxShift < c.MinShift {
		return fmt.Errorf("max shift %.2f is below min shift %.2f", c.MaxShift, c.MinShift)
	}
	if c.IntensityCutoff < 0 || c.IntensityCutoff > 100 {
		return fmt.Errorf("intensity cutoff must be between 0 and 100")
	}
	if c.TopN < 0 {
		return fmt.Errorf("top-n must not be negative")
	}
	return nil
}

// Apply applies all configured filters to a sample. Listing order is kept.
func (c *Config) Apply(s *core.Sample) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.PositiveOnly {
		removeNonPositivePeaks(s)
	}

	// Restrict to the spectral window
	if c.MinShift > 0 || c.MaxShift > 0 {
		c.filterByShift(s)
	}

	// Apply intensity filters
	if c.IntensityCutoff > 0 {
		c.filterByIntensity(s)
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(s)
	}

	return nil
}

// filterByShift removes peaks outside [MinShift, MaxShift]
func (c *Config) filterByShift(s *core.Sample) {
	var filtered []core.Peak
	for _, peak := range s.Peaks {
		if c.MinShift > 0 && peak.Shift < c.MinShift {
			continue
		}
		if c.MaxShift > 0 && peak.Shift > c.MaxShift {
			continue
		}
		filtered = append(filtered, peak)
	}
	s.Peaks = filtered
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(s *core.Sample) {
	if len(s.Peaks) == 0 {
		return
	}

	// Find maximum intensity
	maxIntensity := 0.0
	for _, peak := range s.Peaks {
		if peak.Intensity > maxIntensity {
			maxIntensity = peak.Intensity
		}
	}

	// Calculate threshold
	threshold := (c.IntensityCutoff / 100.0) * maxIntensity

	var filtered []core.Peak
	for _, peak := range s.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}

	s.Peaks = filtered
}

// filterTopN keeps only the N most intense peaks, in their original order
func (c *Config) filterTopN(s *core.Sample) {
	if len(s.Peaks) <= c.TopN {
		return
	}

	idx := make([]int, len(s.Peaks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Peaks[idx[a]].Intensity > s.Peaks[idx[b]].Intensity
	})

	keep := idx[:c.TopN]
	sort.Ints(keep)

	filtered := make([]core.Peak, 0, c.TopN)
	for _, i := range keep {
		filtered = append(filtered, s.Peaks[i])
	}
	s.Peaks = filtered
}

// removeNonPositivePeaks removes peaks with zero or negative shift
func removeNonPositivePeaks(s *core.Sample) {
	var filtered []core.Peak
	for _, peak := range s.Peaks {
		if peak.Shift > 0 {
			filtered = append(filtered, peak)
		}
	}
	s.Peaks = filtered
}
