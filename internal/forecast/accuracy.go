package forecast

import (
	"context"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"demandcast/pkg/contracts/domain"
)

// DefaultTestPeriods caps the back-test window when the request is out of range
const DefaultTestPeriods = 6

// BacktestPoint is one compared month of a back-test
type BacktestPoint struct {
	Date            time.Time `json:"date"`
	Forecast        float64   `json:"forecast"`
	Actual          float64   `json:"actual"`
	AbsoluteError   float64   `json:"absolute_error"`
	PercentageError float64   `json:"percentage_error"`
	// Excluded is set when the synthetic actual is not positive; such points
	// count toward RMSE but not MAPE.
	Excluded bool `json:"excluded,omitempty"`
}

// BacktestReport details how an AccuracyResult was obtained
type BacktestReport struct {
	Points        []BacktestPoint `json:"points"`
	SkippedPoints int             `json:"skipped_points"`
	Degenerate    bool            `json:"degenerate"`
}

// Evaluator estimates forecast error against synthetic actuals
type Evaluator struct {
	rng    RandomSource
	logger *slog.Logger
}

// NewEvaluator creates an evaluator drawing perturbations from rng
func NewEvaluator(rng RandomSource, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		rng:    rng,
		logger: logger.With(slog.String("component", "backtest")),
	}
}

// ClampPeriods resolves the back-test window size for a forecast of length n
func ClampPeriods(periods, n int) int {
	if periods <= 0 || periods > n {
		if n < DefaultTestPeriods {
			return n
		}
		return DefaultTestPeriods
	}
	return periods
}

// Evaluate back-tests the earliest periods points of forecast.
//
// Factors are percentages. For each point the synthetic actual is
// round(f * (1+u1*s/100) * (1+t/100) * (1+u2*n/100)) with u1, u2 uniform in
// [-1, 1). Points whose synthetic actual is zero or negative are left out of
// MAPE; when no point remains the result is zero with Degenerate set.
// history is accepted for symmetry with Generate and is not used numerically.
func (e *Evaluator) Evaluate(ctx context.Context, history, forecast []domain.DataPoint, periods int, factors domain.Factors) (domain.AccuracyResult, BacktestReport) {
	report := BacktestReport{Points: []BacktestPoint{}}

	periods = ClampPeriods(periods, len(forecast))
	if periods == 0 {
		report.Degenerate = true
		e.logger.WarnContext(ctx, "empty forecast, nothing to back-test", "history", len(history))
		return domain.AccuracyResult{}, report
	}

	window := domain.SortByDate(forecast)[:periods]

	var (
		percentages = make([]float64, 0, periods)
		squares     = make([]float64, 0, periods)
	)

	for _, p := range window {
		f := p.ForecastValue()

		seasonal := 1 + (e.rng.NextFloat()*2-1)*(factors.Seasonality/100)
		trend := 1 + factors.Trend/100
		noise := 1 + (e.rng.NextFloat()*2-1)*(factors.Noise/100)

		actual := math.Round(f * seasonal * trend * noise)
		absErr := math.Abs(actual - f)

		point := BacktestPoint{
			Date:          p.Date,
			Forecast:      f,
			Actual:        actual,
			AbsoluteError: absErr,
		}

		if actual > 0 {
			point.PercentageError = absErr / actual * 100
			percentages = append(percentages, point.PercentageError)
		} else {
			point.Excluded = true
			report.SkippedPoints++
		}

		squares = append(squares, absErr*absErr)
		report.Points = append(report.Points, point)
	}

	result := domain.AccuracyResult{
		RMSE: math.Sqrt(stat.Mean(squares, nil)),
	}

	if len(percentages) == 0 {
		report.Degenerate = true
		e.logger.WarnContext(ctx, "every synthetic actual was non-positive",
			"periods", periods,
			"rmse", result.RMSE,
		)
		return result, report
	}

	result.MAPE = stat.Mean(percentages, nil)
	result.Accuracy = math.Max(0, 100-result.MAPE)

	if report.SkippedPoints > 0 {
		e.logger.WarnContext(ctx, "back-test points excluded from MAPE",
			"skipped", report.SkippedPoints,
			"periods", periods,
		)
	}

	e.logger.InfoContext(ctx, "back-test complete",
		"periods", periods,
		"mape", result.MAPE,
		"rmse", result.RMSE,
		"accuracy", result.Accuracy,
	)

	return result, report
}
