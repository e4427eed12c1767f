package http

import (
	"context"
	"io"

	"demandcast/internal/dataimport"
	"demandcast/internal/forecast"
	"demandcast/internal/services"
	"demandcast/pkg/contracts/domain"
)

// ForecastServiceInterface defines the pipeline operations the handlers call
type ForecastServiceInterface interface {
	Import(ctx context.Context, text string, previewOnly bool) (dataimport.ParseResult, error)
	ImportWorkbook(ctx context.Context, r io.Reader, previewOnly bool) (dataimport.ParseResult, error)
	Normalize(ctx context.Context, points []domain.DataPoint) []domain.DataPoint
	NormalizeByCategory(ctx context.Context, points []domain.DataPoint) []domain.DataPoint
	Forecast(ctx context.Context, history []domain.DataPoint, horizon int, overrides *domain.FactorOverrides) ([]domain.DataPoint, error)
	Evaluate(ctx context.Context, history, forecastPoints []domain.DataPoint, periods int, overrides *domain.FactorOverrides) (domain.AccuracyResult, forecast.BacktestReport)
	Run(ctx context.Context, opts services.RunOptions) (*services.RunResult, error)
	Sample(ctx context.Context, months int) []domain.CategoryData
}

var _ ForecastServiceInterface = (*services.ForecastService)(nil)
