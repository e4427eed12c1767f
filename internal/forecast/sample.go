package forecast

import (
	"context"
	"log/slog"
	"math"
	"time"

	"demandcast/pkg/contracts/domain"
)

// band draws a seasonal multiplier low + r*spread for the listed months
type band struct {
	months []time.Month
	low    float64
	spread float64
}

type sampleProfile struct {
	baseLow    float64
	baseSpread float64
	bands      []band
}

var (
	yearEnd   = []time.Month{time.November, time.December}
	yearStart = []time.Month{time.January, time.February}
	summer    = []time.Month{time.June, time.July, time.August}
)

var defaultBands = []band{
	{months: yearEnd, low: 1.3, spread: 0.2},
	{months: yearStart, low: 0.8, spread: 0.1},
	{months: summer, low: 1.1, spread: 0.1},
}

var defaultProfile = sampleProfile{baseLow: 1000, baseSpread: 500, bands: defaultBands}

var sampleProfiles = map[string]sampleProfile{
	"Electronics": {baseLow: 1500, baseSpread: 500, bands: defaultBands},
	"Clothing": {baseLow: 1200, baseSpread: 400, bands: []band{
		{months: yearEnd, low: 1.4, spread: 0.2},
		{months: summer, low: 1.3, spread: 0.2},
		{months: yearStart, low: 0.7, spread: 0.1},
	}},
	"Home & Kitchen": {baseLow: 900, baseSpread: 300, bands: defaultBands},
	"Toys & Games": {baseLow: 600, baseSpread: 300, bands: []band{
		{months: yearEnd, low: 1.8, spread: 0.4},
		{months: yearStart, low: 0.6, spread: 0.1},
	}},
	"Beauty": {baseLow: 800, baseSpread: 200, bands: defaultBands},
}

// SampleGenerator produces synthetic demand histories for demos and tests
type SampleGenerator struct {
	rng    RandomSource
	logger *slog.Logger
}

// NewSampleGenerator creates a sample generator drawing from rng
func NewSampleGenerator(rng RandomSource, logger *slog.Logger) *SampleGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SampleGenerator{
		rng:    rng,
		logger: logger.With(slog.String("component", "sample_generator")),
	}
}

// Historical returns months observations ending the month before now.
// Known category names get their own base range and seasonal shape.
func (s *SampleGenerator) Historical(months int, category string, now time.Time) []domain.DataPoint {
	if months <= 0 {
		return []domain.DataPoint{}
	}

	profile, ok := sampleProfiles[category]
	if !ok {
		profile = defaultProfile
	}

	base := profile.baseLow + s.rng.NextFloat()*profile.baseSpread
	start := domain.MonthKeyOf(domain.FirstOfMonth(now).AddDate(0, -months, 0))

	out := make([]domain.DataPoint, 0, months)
	month := start
	for i := 0; i < months; i++ {
		seasonality := s.seasonality(profile.bands, month.Month)
		trend := 1 + float64(i)*0.01
		noise := 0.9 + s.rng.NextFloat()*0.2

		value := math.Round(base * seasonality * trend * noise)
		out = append(out, domain.NewObservation(month.Start(), value, category))

		base = base*0.8 + value*0.2
		month = month.Next()
	}

	return out
}

func (s *SampleGenerator) seasonality(bands []band, m time.Month) float64 {
	for _, b := range bands {
		for _, bm := range b.months {
			if bm == m {
				return b.low + s.rng.NextFloat()*b.spread
			}
		}
	}
	return 1.0
}

// Categories returns one sample history per default category over the same months
func (s *SampleGenerator) Categories(ctx context.Context, months int, now time.Time) []domain.CategoryData {
	out := make([]domain.CategoryData, 0, len(domain.DefaultCategories))
	for _, c := range domain.DefaultCategories {
		out = append(out, domain.CategoryData{
			Name:  c.Name,
			Color: c.Color,
			Data:  s.Historical(months, c.Name, now),
		})
	}

	s.logger.DebugContext(ctx, "sample data generated",
		"categories", len(out),
		"months", months,
	)
	return out
}
