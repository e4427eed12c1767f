package forecast

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandcast/internal/shared/testutil"
	"demandcast/pkg/contracts/domain"
)

func monthStart(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func series(start time.Time, category string, values ...float64) []domain.DataPoint {
	out := make([]domain.DataPoint, len(values))
	for i, v := range values {
		out[i] = domain.NewObservation(start.AddDate(0, i, 0), v, category)
	}
	return out
}

func forecastValues(points []domain.DataPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.ForecastValue()
	}
	return out
}

func TestGenerator_ExactValues(t *testing.T) {
	history := series(monthStart(2023, time.January), "Beauty", 100, 200, 300)

	tests := []struct {
		name    string
		factors domain.Factors
		horizon int
		want    []float64
	}{
		{
			name:    "canned index without amplification",
			factors: domain.Factors{Seasonality: 0, Trend: 0, Noise: 0.1},
			horizon: 3,
			want:    []float64{200, 200, 220},
		},
		{
			name:    "amplified seasonality",
			factors: domain.Factors{Seasonality: 0.2, Trend: 0, Noise: 0},
			horizon: 10,
			// Apr..Jan: 1.0 1.0 1.16 1.16 1.16 1.0 1.0 1.48 1.48 0.68
			want: []float64{200, 200, 232, 232, 232, 200, 200, 296, 296, 136},
		},
		{
			name:    "compounding trend",
			factors: domain.Factors{Seasonality: 0, Trend: 5, Noise: 0},
			horizon: 3,
			want:    []float64{200, 210, 243},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(FixedSource(0.5), nil)

			got := gen.Generate(context.Background(), history, tt.horizon, &tt.factors)

			assert.Equal(t, tt.want, forecastValues(got))
		})
	}
}

func TestGenerator_TwelveMonthScenario(t *testing.T) {
	now := time.Date(2024, time.June, 18, 9, 0, 0, 0, time.UTC)
	history := NewSampleGenerator(NewRandomSource(42), nil).Historical(24, "Electronics", now)
	require.Len(t, history, 24)

	factors := domain.Factors{Seasonality: 0.2, Trend: 0.05, Noise: 0.1}
	got := NewGenerator(NewRandomSource(7), nil).Generate(context.Background(), history, 12, &factors)

	require.Len(t, got, 12)
	next := history[len(history)-1].MonthKey().Next()
	for i, p := range got {
		assert.True(t, next.Start().Equal(p.Date), "point %d: %v", i, p.Date)
		assert.Equal(t, 1, p.Date.Day())
		assert.Nil(t, p.Actual)
		require.NotNil(t, p.Forecast)
		assert.Greater(t, *p.Forecast, 0.0)
		assert.Equal(t, "Electronics", p.Category)
		next = next.Next()
	}
	assert.True(t, monthStart(2024, time.June).Equal(got[0].Date))
}

func TestGenerator_DefaultFactors(t *testing.T) {
	history := series(monthStart(2023, time.January), "", 100, 200, 300)
	defaults := domain.DefaultFactors()

	withNil := NewGenerator(FixedSource(0.3), nil).Generate(context.Background(), history, 6, nil)
	withDefaults := NewGenerator(FixedSource(0.3), nil).Generate(context.Background(), history, 6, &defaults)

	assert.Equal(t, withDefaults, withNil)
}

func TestGenerator_Degenerate(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		got := NewGenerator(FixedSource(0.5), logger).Generate(context.Background(), nil, 12, nil)

		assert.NotNil(t, got)
		assert.Empty(t, got)
		testutil.AssertLogContains(t, logs, slog.LevelWarn, "no historical data")
	})

	t.Run("only invalid dates", func(t *testing.T) {
		history := []domain.DataPoint{{Actual: domain.Float(10)}}
		got := NewGenerator(FixedSource(0.5), nil).Generate(context.Background(), history, 3, nil)

		assert.Empty(t, got)
	})

	t.Run("zero horizon", func(t *testing.T) {
		history := series(monthStart(2023, time.January), "", 100)
		got := NewGenerator(FixedSource(0.5), nil).Generate(context.Background(), history, 0, nil)

		assert.Empty(t, got)
	})
}

func TestGenerator_AnchorAndCategory(t *testing.T) {
	history := []domain.DataPoint{
		domain.NewObservation(time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC), 100, "late"),
		domain.NewObservation(time.Date(2022, time.December, 5, 0, 0, 0, 0, time.UTC), 100, "early"),
	}
	snapshot := []domain.DataPoint{history[0].Clone(), history[1].Clone()}

	got := NewGenerator(FixedSource(0.5), nil).Generate(context.Background(), history, 2, nil)

	require.Len(t, got, 2)
	assert.True(t, monthStart(2023, time.February).Equal(got[0].Date))
	assert.True(t, monthStart(2023, time.March).Equal(got[1].Date))
	assert.Equal(t, "early", got[0].Category)
	assert.Equal(t, snapshot, history)
}

func TestGenerator_AnchorsOnUTCMonth(t *testing.T) {
	// 23:00 on Dec 31 in New York is already January in UTC
	est := time.FixedZone("EST", -5*60*60)
	last := time.Date(2023, time.December, 31, 23, 0, 0, 0, est)
	history := []domain.DataPoint{
		domain.NewObservation(time.Date(2023, time.November, 15, 0, 0, 0, 0, est), 100, ""),
		domain.NewObservation(last, 100, ""),
	}

	got := NewGenerator(FixedSource(0.5), nil).Generate(context.Background(), history, 1, nil)

	require.Len(t, got, 1)
	assert.Equal(t, domain.MonthKey{Year: 2024, Month: time.January}, domain.MonthKeyOf(last))
	assert.True(t, monthStart(2024, time.February).Equal(got[0].Date), "got %v", got[0].Date)
}

func TestGenerator_SeededIsReproducible(t *testing.T) {
	history := series(monthStart(2022, time.January), "x",
		120, 90, 100, 110, 100, 130, 140, 135, 100, 105, 160, 180, 125, 95)

	a := NewGenerator(NewRandomSource(99), nil).Generate(context.Background(), history, 12, nil)
	b := NewGenerator(NewRandomSource(99), nil).Generate(context.Background(), history, 12, nil)

	assert.Equal(t, a, b)
}

func TestSeasonalIndex(t *testing.T) {
	t.Run("short history uses canned index", func(t *testing.T) {
		history := series(monthStart(2023, time.January), "", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)

		idx := SeasonalIndex(history)

		assert.Equal(t, CannedIndex(), idx)
		assert.Equal(t, 1.3, idx.At(time.December))
		assert.Equal(t, 0.8, idx.At(time.February))
		assert.Equal(t, 1.1, idx.At(time.July))
		assert.Equal(t, 1.0, idx.At(time.April))
	})

	t.Run("months are bucketed in UTC", func(t *testing.T) {
		local := series(monthStart(2023, time.January), "", 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)
		utc := series(monthStart(2023, time.January), "", 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)
		est := time.FixedZone("EST", -5*60*60)
		local = append(local, domain.NewObservation(time.Date(2023, time.December, 31, 23, 0, 0, 0, est), 400, ""))
		utc = append(utc, domain.NewObservation(time.Date(2024, time.January, 1, 4, 0, 0, 0, time.UTC), 400, ""))

		assert.Equal(t, SeasonalIndex(utc), SeasonalIndex(local))
	})

	t.Run("derived index averages to one", func(t *testing.T) {
		var values []float64
		for i := 0; i < 24; i++ {
			if i%12 == 11 {
				values = append(values, 200)
			} else {
				values = append(values, 100)
			}
		}
		idx := SeasonalIndex(series(monthStart(2022, time.January), "", values...))

		sum := 0.0
		for _, v := range idx {
			sum += v
		}
		assert.InDelta(t, 1.0, sum/12, 1e-9)
		assert.InDelta(t, 200/(1300.0/12), idx.At(time.December), 1e-9)
		assert.InDelta(t, 100/(1300.0/12), idx.At(time.March), 1e-9)
	})

	t.Run("missing month counts as neutral", func(t *testing.T) {
		history := series(monthStart(2023, time.January), "",
			1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000)
		history = append(history, domain.NewObservation(monthStart(2024, time.January), 1000, ""))

		idx := SeasonalIndex(history)

		for m := time.January; m <= time.December; m++ {
			assert.InDelta(t, 1.0, idx.At(m), 1e-9, m.String())
		}
	})

	t.Run("all zero falls back to canned", func(t *testing.T) {
		history := series(monthStart(2023, time.January), "", make([]float64, 12)...)

		assert.Equal(t, CannedIndex(), SeasonalIndex(history))
	})
}

func TestAmplifySeasonality(t *testing.T) {
	idx := AmplifySeasonality(CannedIndex(), 0.5)

	assert.InDelta(t, 1+0.3*2.5, idx.At(time.November), 1e-9)
	assert.InDelta(t, 1-0.2*2.5, idx.At(time.January), 1e-9)
	assert.InDelta(t, 1.0, idx.At(time.May), 1e-9)

	unchanged := AmplifySeasonality(CannedIndex(), 0)
	for i, v := range CannedIndex() {
		assert.InDelta(t, v, unchanged[i], 1e-12)
	}
}

func TestGrowthRate(t *testing.T) {
	assert.InDelta(t, 1.0005, GrowthRate(0.05), 1e-12)
	assert.InDelta(t, 1.05, GrowthRate(5), 1e-12)
	assert.Equal(t, 1.1, GrowthRate(50))
	assert.Equal(t, 0.9, GrowthRate(-50))
}

func TestBaseValue(t *testing.T) {
	start := monthStart(2023, time.January)

	assert.InDelta(t, 1100.0/3, BaseValue(series(start, "", 100, 200, 300, 600)), 1e-9)
	assert.InDelta(t, 15.0, BaseValue(series(start, "", 10, 20)), 1e-9)
	assert.Equal(t, DefaultBaseValue, BaseValue(series(start, "", 0, 0, 0)))
	assert.Equal(t, DefaultBaseValue, BaseValue(nil))
}
