package http

import (
	"demandcast/internal/dataimport"
	"demandcast/internal/forecast"
	"demandcast/pkg/contracts/domain"
)

// ImportResponse is the body of a successful import
type ImportResponse struct {
	Headers []string              `json:"headers"`
	Rows    [][]string            `json:"rows,omitempty"`
	Data    []domain.DataPoint    `json:"data"`
	Skipped []dataimport.RowIssue `json:"skipped,omitempty"`
	Preview bool                  `json:"preview"`
}

func newImportResponse(result dataimport.ParseResult, preview bool) ImportResponse {
	resp := ImportResponse{
		Headers: result.Headers,
		Data:    result.Data,
		Skipped: result.Skipped,
		Preview: preview,
	}
	// Raw rows only matter to a client showing a preview grid
	if preview {
		resp.Rows = result.Rows
	}
	return resp
}

// SeriesResponse carries a list of points
type SeriesResponse struct {
	Points []domain.DataPoint `json:"points"`
}

// ForecastResponse carries projected points
type ForecastResponse struct {
	Forecast []domain.DataPoint `json:"forecast"`
}

// AccuracyResponse carries back-test metrics and their per-point detail
type AccuracyResponse struct {
	Accuracy domain.AccuracyResult   `json:"accuracy"`
	Backtest forecast.BacktestReport `json:"backtest"`
}

// SampleResponse carries synthetic category histories
type SampleResponse struct {
	Categories []domain.CategoryData `json:"categories"`
}
