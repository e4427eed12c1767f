package domain

import (
	"sort"
	"time"
)

// DataPoint is a single monthly observation or projection.
// An observation carries Actual, a projection carries Forecast.
type DataPoint struct {
	Date     time.Time `json:"date"`
	Actual   *float64  `json:"actual"`
	Forecast *float64  `json:"forecast"`
	Category string    `json:"category,omitempty"`
}

// NewObservation creates a historical data point
func NewObservation(date time.Time, value float64, category string) DataPoint {
	return DataPoint{
		Date:     date,
		Actual:   Float(value),
		Category: category,
	}
}

// NewProjection creates a forecast-only data point
func NewProjection(date time.Time, value float64, category string) DataPoint {
	return DataPoint{
		Date:     date,
		Forecast: Float(value),
		Category: category,
	}
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// HasValidDate reports whether the point carries a usable date.
// A zero time is how an unparseable date is represented.
func (p DataPoint) HasValidDate() bool {
	return !p.Date.IsZero()
}

// ActualValue returns the observed value or 0 when absent
func (p DataPoint) ActualValue() float64 {
	if p.Actual == nil {
		return 0
	}
	return *p.Actual
}

// ForecastValue returns the projected value or 0 when absent
func (p DataPoint) ForecastValue() float64 {
	if p.Forecast == nil {
		return 0
	}
	return *p.Forecast
}

// MonthKey identifies the UTC calendar month the point falls in
func (p DataPoint) MonthKey() MonthKey {
	return MonthKeyOf(p.Date)
}

// Clone returns a deep copy so callers can mutate value pointers freely
func (p DataPoint) Clone() DataPoint {
	c := p
	if p.Actual != nil {
		c.Actual = Float(*p.Actual)
	}
	if p.Forecast != nil {
		c.Forecast = Float(*p.Forecast)
	}
	return c
}

// MonthKey is a (year, month) pair
type MonthKey struct {
	Year  int
	Month time.Month
}

// Start returns the first instant of the month in UTC
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month
func (k MonthKey) Next() MonthKey {
	return MonthKeyOf(k.Start().AddDate(0, 1, 0))
}

// Before reports whether k is strictly earlier than other
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// MonthKeyOf returns the month key of t in UTC
func MonthKeyOf(t time.Time) MonthKey {
	t = t.UTC()
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// FirstOfMonth truncates t to midnight UTC on the 1st of its month
func FirstOfMonth(t time.Time) time.Time {
	return MonthKeyOf(t).Start()
}

// SortByDate returns a copy of points ordered by ascending date.
// Equal dates keep their input order.
func SortByDate(points []DataPoint) []DataPoint {
	sorted := make([]DataPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
