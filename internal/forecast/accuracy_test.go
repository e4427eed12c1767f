package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandcast/internal/shared/testutil"
	"demandcast/pkg/contracts/domain"
)

func projections(start time.Time, values ...float64) []domain.DataPoint {
	out := make([]domain.DataPoint, len(values))
	for i, v := range values {
		out[i] = domain.NewProjection(start.AddDate(0, i, 0), v, "")
	}
	return out
}

func TestClampPeriods(t *testing.T) {
	tests := []struct {
		periods, n, want int
	}{
		{3, 10, 3},
		{0, 10, 6},
		{-1, 10, 6},
		{20, 10, 6},
		{0, 4, 4},
		{5, 4, 4},
		{4, 4, 4},
		{0, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPeriods(tt.periods, tt.n), "periods=%d n=%d", tt.periods, tt.n)
	}
}

func TestEvaluator_ExactMetrics(t *testing.T) {
	t.Run("trend only", func(t *testing.T) {
		forecast := projections(monthStart(2024, time.January), 200, 200)
		eval := NewEvaluator(FixedSource(0.5), nil)

		result, report := eval.Evaluate(context.Background(), nil, forecast, 2, domain.Factors{Seasonality: 10, Trend: 5, Noise: 5})

		assert.InDelta(t, 10.0/210*100, result.MAPE, 1e-9)
		assert.InDelta(t, 10.0, result.RMSE, 1e-9)
		assert.InDelta(t, 100-10.0/210*100, result.Accuracy, 1e-9)
		require.Len(t, report.Points, 2)
		assert.Equal(t, 210.0, report.Points[0].Actual)
		assert.Equal(t, 10.0, report.Points[0].AbsoluteError)
		assert.False(t, report.Degenerate)
	})

	t.Run("seasonal draw", func(t *testing.T) {
		forecast := projections(monthStart(2024, time.January), 100)
		eval := NewEvaluator(NewSequenceSource(0.75, 0.5), nil)

		result, report := eval.Evaluate(context.Background(), nil, forecast, 1, domain.Factors{Seasonality: 10, Trend: 0, Noise: 5})

		require.Len(t, report.Points, 1)
		assert.Equal(t, 105.0, report.Points[0].Actual)
		assert.InDelta(t, 5.0/105*100, result.MAPE, 1e-9)
		assert.InDelta(t, 5.0, result.RMSE, 1e-9)
	})
}

func TestEvaluator_WindowIsEarliestPoints(t *testing.T) {
	forecast := []domain.DataPoint{
		domain.NewProjection(monthStart(2024, time.March), 300, ""),
		domain.NewProjection(monthStart(2024, time.January), 100, ""),
		domain.NewProjection(monthStart(2024, time.February), 200, ""),
	}

	result, report := NewEvaluator(FixedSource(0.5), nil).
		Evaluate(context.Background(), nil, forecast, 2, domain.Factors{Trend: 10})

	require.Len(t, report.Points, 2)
	assert.True(t, monthStart(2024, time.January).Equal(report.Points[0].Date))
	assert.True(t, monthStart(2024, time.February).Equal(report.Points[1].Date))
	assert.Equal(t, 110.0, report.Points[0].Actual)
	assert.Equal(t, 220.0, report.Points[1].Actual)
	assert.InDelta(t, 10.0/110*100, result.MAPE, 1e-9)
	assert.InDelta(t, math.Sqrt(250), result.RMSE, 1e-9)
}

func TestEvaluator_NonPositiveActuals(t *testing.T) {
	t.Run("partially excluded", func(t *testing.T) {
		forecast := projections(monthStart(2024, time.January), 0, 100)
		logger, logs := testutil.NewTestLogger(t)

		result, report := NewEvaluator(FixedSource(0.5), logger).
			Evaluate(context.Background(), nil, forecast, 2, domain.Factors{})

		assert.Equal(t, 0.0, result.MAPE)
		assert.Equal(t, 100.0, result.Accuracy)
		assert.Equal(t, 0.0, result.RMSE)
		assert.Equal(t, 1, report.SkippedPoints)
		assert.True(t, report.Points[0].Excluded)
		assert.False(t, report.Degenerate)
		assert.True(t, logs.ContainsMessage("excluded from MAPE"))
	})

	t.Run("all excluded", func(t *testing.T) {
		forecast := projections(monthStart(2024, time.January), 100, 100)

		result, report := NewEvaluator(FixedSource(0.5), nil).
			Evaluate(context.Background(), nil, forecast, 2, domain.Factors{Trend: -100})

		assert.Equal(t, 0.0, result.MAPE)
		assert.Equal(t, 0.0, result.Accuracy)
		assert.InDelta(t, 100.0, result.RMSE, 1e-9)
		assert.Equal(t, 2, report.SkippedPoints)
		assert.True(t, report.Degenerate)
		assert.False(t, math.IsNaN(result.MAPE))
	})

	t.Run("empty forecast", func(t *testing.T) {
		result, report := NewEvaluator(FixedSource(0.5), nil).
			Evaluate(context.Background(), nil, nil, 3, domain.DefaultTestFactors())

		assert.Equal(t, domain.AccuracyResult{}, result)
		assert.True(t, report.Degenerate)
		assert.Empty(t, report.Points)
	})
}

func TestEvaluator_MetricBounds(t *testing.T) {
	history := series(monthStart(2022, time.January), "x", 900, 1000, 1100)

	for seed := uint64(1); seed <= 50; seed++ {
		gen := NewGenerator(NewRandomSource(seed), nil)
		forecast := gen.Generate(context.Background(), history, 12, nil)

		result, report := NewEvaluator(NewRandomSource(seed+1000), nil).
			Evaluate(context.Background(), history, forecast, 0, domain.DefaultTestFactors())

		require.False(t, report.Degenerate)
		assert.Len(t, report.Points, DefaultTestPeriods)
		assert.GreaterOrEqual(t, result.MAPE, 0.0)
		assert.GreaterOrEqual(t, result.RMSE, 0.0)
		assert.GreaterOrEqual(t, result.Accuracy, 0.0)
		assert.LessOrEqual(t, result.Accuracy, 100.0)
	}
}

func TestSampleGenerator(t *testing.T) {
	now := time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC)

	t.Run("exact first value", func(t *testing.T) {
		got := NewSampleGenerator(FixedSource(0.5), nil).Historical(1, "Beauty", now)

		require.Len(t, got, 1)
		assert.True(t, monthStart(2024, time.January).Equal(got[0].Date))
		// base 900, January band 0.85, trend 1, noise 1
		assert.Equal(t, 765.0, got[0].ActualValue())
		assert.Equal(t, "Beauty", got[0].Category)
	})

	t.Run("monthly cadence", func(t *testing.T) {
		got := NewSampleGenerator(NewRandomSource(3), nil).Historical(24, "Toys & Games", now)

		require.Len(t, got, 24)
		assert.True(t, monthStart(2022, time.February).Equal(got[0].Date))
		assert.True(t, monthStart(2024, time.January).Equal(got[23].Date))
		for i, p := range got {
			assert.Equal(t, 1, p.Date.Day())
			assert.Greater(t, p.ActualValue(), 0.0)
			assert.Nil(t, p.Forecast)
			if i > 0 {
				assert.True(t, got[i-1].MonthKey().Next() == p.MonthKey())
			}
		}
	})

	t.Run("categories share the date range", func(t *testing.T) {
		got := NewSampleGenerator(NewRandomSource(3), nil).Categories(context.Background(), 12, now)

		require.Len(t, got, len(domain.DefaultCategories))
		for i, c := range got {
			assert.Equal(t, domain.DefaultCategories[i].Name, c.Name)
			assert.Equal(t, domain.DefaultCategories[i].Color, c.Color)
			require.Len(t, c.Data, 12)
			assert.True(t, got[0].Data[0].Date.Equal(c.Data[0].Date))
		}
	})

	t.Run("non-positive months", func(t *testing.T) {
		assert.Empty(t, NewSampleGenerator(FixedSource(0.5), nil).Historical(0, "", now))
	})
}

func TestRandomSources(t *testing.T) {
	t.Run("sequence cycles", func(t *testing.T) {
		s := NewSequenceSource(0.1, 0.2)
		assert.Equal(t, []float64{0.1, 0.2, 0.1}, []float64{s.NextFloat(), s.NextFloat(), s.NextFloat()})
		assert.Equal(t, 0.0, NewSequenceSource().NextFloat())
	})

	t.Run("seeded factory is reproducible", func(t *testing.T) {
		factory := SeededFactory(11)
		a, b := factory(), factory()

		for i := 0; i < 5; i++ {
			v := a.NextFloat()
			assert.Equal(t, v, b.NextFloat())
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	})

	t.Run("unseeded factory yields sources", func(t *testing.T) {
		assert.NotNil(t, SeededFactory(0)())
	})
}
