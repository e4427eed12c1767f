package forecast

import (
	"context"
	"log/slog"
	"math"

	"demandcast/pkg/contracts/domain"
)

// Generator projects a seasonal-trend model beyond the end of a history
type Generator struct {
	rng    RandomSource
	logger *slog.Logger
}

// NewGenerator creates a generator drawing noise from rng
func NewGenerator(rng RandomSource, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		rng:    rng,
		logger: logger.With(slog.String("component", "forecast_generator")),
	}
}

// Generate returns horizon monthly projections starting the month after the
// latest historical date. Nil factors select domain.DefaultFactors.
//
// Each value is round(base * index[month] * growth^i * jitter) where jitter is
// uniform in [1-noise, 1+noise). Every point carries the category of the
// earliest historical point. Empty history or a non-positive horizon yields
// an empty slice.
func (g *Generator) Generate(ctx context.Context, history []domain.DataPoint, horizon int, factors *domain.Factors) []domain.DataPoint {
	f := domain.DefaultFactors()
	if factors != nil {
		f = *factors
	}

	dated := make([]domain.DataPoint, 0, len(history))
	for _, p := range history {
		if p.HasValidDate() {
			dated = append(dated, p)
		}
	}

	if len(dated) == 0 {
		g.logger.WarnContext(ctx, "no historical data to forecast from", "points", len(history))
		return []domain.DataPoint{}
	}
	if horizon <= 0 {
		g.logger.WarnContext(ctx, "non-positive forecast horizon", "horizon", horizon)
		return []domain.DataPoint{}
	}

	sorted := domain.SortByDate(dated)
	category := sorted[0].Category

	idx := AmplifySeasonality(SeasonalIndex(sorted), f.Seasonality)
	base := BaseValue(sorted)
	growth := GrowthRate(f.Trend)

	g.logger.DebugContext(ctx, "forecast model",
		"history", len(sorted),
		"horizon", horizon,
		"base", base,
		"growth", growth,
		"seasonality", f.Seasonality,
		"noise", f.Noise,
	)

	out := make([]domain.DataPoint, 0, horizon)
	month := sorted[len(sorted)-1].MonthKey().Next()
	for i := 0; i < horizon; i++ {
		jitter := 1 - f.Noise + g.rng.NextFloat()*2*f.Noise
		value := math.Round(base * idx.At(month.Month) * math.Pow(growth, float64(i)) * jitter)

		out = append(out, domain.NewProjection(month.Start(), value, category))
		month = month.Next()
	}

	g.logger.InfoContext(ctx, "forecast generated",
		"category", category,
		"points", len(out),
	)

	return out
}
