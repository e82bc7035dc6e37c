package match

import "github.com/ChrisMcGann/RamanKey/pkg/core"

// Classify picks the type with the highest percentage. Ties go to the type that
// comes first in reference column order. A maximum below threshold leaves the
// sample unclassified; a maximum equal to threshold classifies it.
func Classify(res core.SampleResult, types []string, threshold float64) core.Decision {
	d := core.Decision{Index: -1}
	if len(res.Percent) == 0 {
		return d
	}

	best := 0
	for j := 1; j < len(res.Percent); j++ {
		if res.Percent[j] > res.Percent[best] {
			best = j
		}
	}

	d.Max = res.Percent[best]
	if d.Max >= threshold {
		d.Index = best
		d.Type = types[best]
		d.Classified = true
	}
	return d
}
