package forecast

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"demandcast/pkg/contracts/domain"
)

const (
	// MinSeasonalHistory is the number of points needed to derive an index from data
	MinSeasonalHistory = 12

	// neutralMonthValue stands in for a calendar month with no observations
	neutralMonthValue = 1000.0

	// DefaultBaseValue is used when recent history averages to zero
	DefaultBaseValue = 1000.0

	// baseWindow is how many trailing observations form the projection base
	baseWindow = 3

	seasonalGain = 3.0
	minGrowth    = 0.9
	maxGrowth    = 1.1
)

// Index holds one multiplier per calendar month, January first
type Index [12]float64

// At returns the multiplier for m
func (idx Index) At(m time.Month) float64 {
	return idx[int(m)-1]
}

// CannedIndex is the fallback shape for short histories:
// a year-end peak, a post-holiday dip and a mild summer lift.
func CannedIndex() Index {
	var idx Index
	for i := range idx {
		switch time.Month(i + 1) {
		case time.November, time.December:
			idx[i] = 1.3
		case time.January, time.February:
			idx[i] = 0.8
		case time.June, time.July, time.August:
			idx[i] = 1.1
		default:
			idx[i] = 1.0
		}
	}
	return idx
}

// SeasonalIndex derives the monthly index from history.
//
// With at least MinSeasonalHistory points each month's mean actual is divided
// by the mean of the twelve monthly means, months without data counting as
// 1000. Shorter histories, or data averaging to zero, get CannedIndex.
func SeasonalIndex(history []domain.DataPoint) Index {
	if len(history) < MinSeasonalHistory {
		return CannedIndex()
	}

	var buckets [12][]float64
	for _, p := range history {
		m := p.Date.UTC().Month()
		buckets[m-1] = append(buckets[m-1], p.ActualValue())
	}

	var means Index
	for i, values := range buckets {
		if len(values) == 0 {
			means[i] = neutralMonthValue
			continue
		}
		means[i] = stat.Mean(values, nil)
	}

	overall := stat.Mean(means[:], nil)
	if overall == 0 || math.IsNaN(overall) || math.IsInf(overall, 0) {
		return CannedIndex()
	}

	var idx Index
	for i, v := range means {
		idx[i] = v / overall
	}
	return idx
}

// AmplifySeasonality scales each month's deviation from 1.0 by 1+3s
func AmplifySeasonality(idx Index, seasonality float64) Index {
	gain := 1 + seasonality*seasonalGain
	var out Index
	for i, v := range idx {
		out[i] = 1 + (v-1)*gain
	}
	return out
}

// GrowthRate converts the trend factor to a per-month multiplier in [0.9, 1.1]
func GrowthRate(trend float64) float64 {
	return math.Max(minGrowth, math.Min(maxGrowth, 1+trend*0.01))
}

// BaseValue is the mean actual of the last three points of a date-sorted
// history, or DefaultBaseValue when that mean is zero or undefined.
func BaseValue(sorted []domain.DataPoint) float64 {
	if len(sorted) == 0 {
		return DefaultBaseValue
	}

	start := len(sorted) - baseWindow
	if start < 0 {
		start = 0
	}

	recent := make([]float64, 0, baseWindow)
	for _, p := range sorted[start:] {
		recent = append(recent, p.ActualValue())
	}

	base := stat.Mean(recent, nil)
	if base == 0 || math.IsNaN(base) {
		return DefaultBaseValue
	}
	return base
}
