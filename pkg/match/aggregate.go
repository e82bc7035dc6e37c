package match

import "github.com/ChrisMcGann/RamanKey/pkg/core"

// Aggregate turns the match vectors of one sample into a percentage per type.
// Each detected peak counts at most once per type. Percentages are not clamped:
// more matching peaks than reference peaks yields values above 100.
func Aggregate(sampleID string, vectors []core.MatchVector, validPeakCount []int) core.SampleResult {
	res := core.SampleResult{
		SampleID: sampleID,
		Matched:  make([]int, len(validPeakCount)),
		Percent:  make([]float64, len(validPeakCount)),
	}

	for _, vec := range vectors {
		for j, hit := range vec {
			if hit {
				res.Matched[j]++
			}
		}
	}

	for j, n := range validPeakCount {
		// the reference loader guarantees n >= 1
		if n > 0 {
			res.Percent[j] = float64(res.Matched[j]) / float64(n) * 100
		}
	}

	return res
}
