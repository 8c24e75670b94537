package batch

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

func newRunID() string { return uuid.NewString() }

// histogram counts reasons across records.
type histogram map[string]int

func newHistogram() histogram { return make(histogram) }

func (h histogram) add(reasons ...string) {
	for _, r := range reasons {
		h[r]++
	}
}

// sorted returns the buckets by count descending, then reason ascending.
func (h histogram) sorted() []ReasonCount {
	if len(h) == 0 {
		return nil
	}
	out := make([]ReasonCount, 0, len(h))
	for r, n := range h {
		out = append(out, ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// ratio returns n/total rounded to four decimals, or 0 when total is 0.
func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*10000) / 10000
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*100) / 100
}
