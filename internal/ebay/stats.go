package ebay

import (
	"fmt"
	"math"
	"sort"

	"github.com/bluberry-app/pricing/internal/pricing"
)

// priceStats summarizes a set of comparable prices.
type priceStats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

func computeStats(prices []float64) priceStats {
	if len(prices) == 0 {
		return priceStats{}
	}
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	var sum float64
	for _, p := range sorted {
		sum += p
	}
	return priceStats{
		Mean:   sum / float64(len(sorted)),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// median of a sorted slice; even-length slices average the two middle
// values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quartiles takes Q1 and Q3 at the truncated 25th/75th percentile index of
// the sorted slice. This is deliberately not interpolated: it matches the
// historical behavior of the pricing feature and produces slightly
// different outlier sets than a statistics library on small samples.
func quartiles(sorted []float64) (q1, q3 float64) {
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	return sorted[n/4], sorted[(3*n)/4]
}

// removeOutliers drops prices outside [Q1-1.5*IQR, Q3+1.5*IQR]. When
// filtering would empty the set, the original set is kept.
func removeOutliers(prices []float64) (kept, outliers []float64) {
	if len(prices) < 4 {
		return prices, nil
	}
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	q1, q3 := quartiles(sorted)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	for _, p := range prices {
		if p < lower || p > upper {
			outliers = append(outliers, p)
		} else {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return prices, nil
	}
	return kept, outliers
}

// confidenceFor grades an estimate by sample size and price spread
// ((max-min)/median).
func confidenceFor(sampleSize int, spreadRatio float64) pricing.Confidence {
	switch {
	case sampleSize >= 10 && spreadRatio < 1.0:
		return pricing.ConfidenceHigh
	case sampleSize >= 10 && spreadRatio < 2.0:
		return pricing.ConfidenceMedium
	case sampleSize >= 5 && sampleSize <= 9:
		return pricing.ConfidenceMedium
	default:
		return pricing.ConfidenceLow
	}
}

// DistributionBucket is one bar of the price histogram in the analysis
// payload.
type DistributionBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

const distributionBuckets = 5

// priceDistribution splits [min, max] into equal-width buckets and counts
// prices per bucket.
func priceDistribution(prices []float64) []DistributionBucket {
	if len(prices) == 0 {
		return nil
	}
	stats := computeStats(prices)
	width := (stats.Max - stats.Min) / distributionBuckets
	if width <= 0 {
		return []DistributionBucket{{
			Label: fmt.Sprintf("$%d", int(math.Round(stats.Min))),
			Count: len(prices),
		}}
	}

	buckets := make([]DistributionBucket, distributionBuckets)
	for i := range buckets {
		lo := stats.Min + float64(i)*width
		hi := lo + width
		buckets[i].Label = fmt.Sprintf("$%d-$%d", int(math.Round(lo)), int(math.Round(hi)))
	}
	for _, p := range prices {
		idx := int((p - stats.Min) / width)
		if idx >= distributionBuckets {
			idx = distributionBuckets - 1
		}
		buckets[idx].Count++
	}
	return buckets
}
