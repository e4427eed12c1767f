// Package timeseries regularizes sparse observations onto a monthly grid.
package timeseries

import (
	"math"
	"sort"
	"time"

	"demandcast/pkg/contracts/domain"
)

// Normalize returns exactly one point per calendar month from the earliest
// to the latest valid month, inclusive, in ascending order.
//
// Points with a zero date are dropped. When several points fall in the same
// month the one with the latest timestamp wins. Missing months are filled by
// time-linear interpolation between the nearest observed neighbors, rounded
// to a whole unit, or by carrying the nearest value forward or backward.
// Every output point is dated the 1st of its month at midnight UTC.
// The input is never modified.
func Normalize(points []domain.DataPoint) []domain.DataPoint {
	valid := make([]domain.DataPoint, 0, len(points))
	for _, p := range points {
		if p.HasValidDate() {
			p.Date = p.Date.UTC()
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return []domain.DataPoint{}
	}

	sorted := domain.SortByDate(valid)

	byMonth := make(map[domain.MonthKey]domain.DataPoint, len(sorted))
	for _, p := range sorted {
		key := p.MonthKey()
		if existing, ok := byMonth[key]; !ok || existing.Date.Before(p.Date) {
			byMonth[key] = p
		}
	}

	first := sorted[0].MonthKey()
	last := sorted[len(sorted)-1].MonthKey()

	out := make([]domain.DataPoint, 0, MonthsBetween(sorted[0].Date, sorted[len(sorted)-1].Date))
	for key := first; !last.Before(key); key = key.Next() {
		if p, ok := byMonth[key]; ok {
			observed := p.Clone()
			observed.Date = key.Start()
			out = append(out, observed)
			continue
		}
		out = append(out, fillGap(key.Start(), sorted))
	}

	return out
}

// fillGap synthesizes the point for an unobserved month starting at t.
// Neighbors are searched across all valid points, duplicates included.
func fillGap(t time.Time, sorted []domain.DataPoint) domain.DataPoint {
	var before, after *domain.DataPoint
	for i := range sorted {
		p := &sorted[i]
		switch {
		case p.Date.Before(t):
			if before == nil || p.Date.After(before.Date) {
				before = p
			}
		case p.Date.After(t):
			if after == nil || p.Date.Before(after.Date) {
				after = p
			}
		}
	}

	gap := domain.DataPoint{Date: t}

	switch {
	case before != nil && after != nil && before.Actual != nil && after.Actual != nil:
		span := after.Date.Sub(before.Date).Seconds()
		ratio := t.Sub(before.Date).Seconds() / span
		v := *before.Actual + ratio*(*after.Actual-*before.Actual)
		gap.Actual = domain.Float(math.Round(v))
	case before != nil && before.Actual != nil:
		gap.Actual = domain.Float(*before.Actual)
	case after != nil && after.Actual != nil:
		gap.Actual = domain.Float(*after.Actual)
	}

	switch {
	case before != nil && before.Category != "":
		gap.Category = before.Category
	case after != nil:
		gap.Category = after.Category
	}

	return gap
}

// NormalizeByCategory partitions points by category and normalizes each
// sub-series on its own. Uncategorized points are keyed by "".
func NormalizeByCategory(points []domain.DataPoint) map[string][]domain.DataPoint {
	groups := make(map[string][]domain.DataPoint)
	for _, p := range points {
		groups[p.Category] = append(groups[p.Category], p)
	}

	out := make(map[string][]domain.DataPoint, len(groups))
	for category, group := range groups {
		if series := Normalize(group); len(series) > 0 {
			out[category] = series
		}
	}
	return out
}

// Categories returns the keys of a partitioned series in sorted order
func Categories(series map[string][]domain.DataPoint) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MonthsBetween returns the inclusive number of calendar months spanned by
// a and b, or 0 when b's month precedes a's.
func MonthsBetween(a, b time.Time) int {
	a, b = a.UTC(), b.UTC()
	n := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month()) + 1
	if n < 0 {
		return 0
	}
	return n
}
