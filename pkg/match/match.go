// Package match scores detected Raman peaks against a polymer reference table
// and classifies samples by their best-matching type.
package match

import (
	"math"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance bounds the distance between a detected and a reference peak.
// Two positions match when |d - r| <= Abs + Rel*|r|.
type Tolerance struct {
	Abs float64 // Absolute tolerance in cm-1
	Rel float64 // Relative tolerance; 0 for a purely absolute comparison
}

// boundaryULPs is the rounding slack, in units of the larger operand, granted
// to a difference that lands on the tolerance boundary.
const boundaryULPs = 4

// Close reports whether a detected position matches a reference position.
// A zero tolerance is an exact comparison. Otherwise a difference that is the
// tolerance up to rounding of the subtraction still matches.
func (t Tolerance) Close(detected, reference float64) bool {
	if math.IsNaN(detected) || math.IsNaN(reference) {
		return false
	}
	tol := t.Abs + t.Rel*math.Abs(reference)
	if tol == 0 {
		return detected == reference
	}
	diff := math.Abs(detected - reference)
	if diff <= tol {
		return true
	}
	return scalar.EqualWithinAbs(diff, tol, boundaryULPs*ulp(math.Max(math.Abs(detected), math.Abs(reference))))
}

// ulp returns the spacing of float64 values at x.
func ulp(x float64) float64 {
	return math.Nextafter(x, math.Inf(1)) - x
}

// Matcher matches detected peaks against a shared, read-only reference table.
type Matcher struct {
	ref *core.ReferenceTable
	tol Tolerance
}

// NewMatcher creates a matcher for the given reference table.
func NewMatcher(ref *core.ReferenceTable, tol Tolerance) *Matcher {
	return &Matcher{ref: ref, tol: tol}
}

// Match returns, for every type, whether any reference peak of that type lies
// within tolerance of the detected position. Types are independent: one peak
// may match several of them.
func (m *Matcher) Match(detected float64) core.MatchVector {
	vec := make(core.MatchVector, m.ref.NumTypes())
	for j := range vec {
		for _, row := range m.ref.Peaks {
			r := row[j]
			if r == core.Sentinel {
				continue
			}
			if m.tol.Close(detected, r) {
				vec[j] = true
				break
			}
		}
	}
	return vec
}

// MatchSample matches every detected peak of a sample, in listing order.
func (m *Matcher) MatchSample(s *core.Sample) []core.MatchVector {
	positions := s.Positions()
	vectors := make([]core.MatchVector, 0, len(positions))
	for _, d := range positions {
		vectors = append(vectors, m.Match(d))
	}
	return vectors
}

// Score runs Match and Aggregate for one sample.
func (m *Matcher) Score(s *core.Sample) core.SampleResult {
	return Aggregate(s.ID, m.MatchSample(s), m.ref.ValidPeakCount)
}
