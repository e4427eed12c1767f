// Package api contains API contract definitions for the demand forecast service.
// Version v1 represents the current stable API version.
package api

import (
	"demandcast/pkg/contracts/domain"
)

// Import API Requests

// ImportRequest carries CSV text when the client posts JSON instead of text/csv
type ImportRequest struct {
	CSV string `json:"csv" validate:"required"`
}

// Pipeline API Requests

// NormalizeRequest asks for a series to be put on a monthly cadence
type NormalizeRequest struct {
	Points []domain.DataPoint `json:"points"`
	// ByCategory normalizes each category on its own
	ByCategory bool `json:"by_category"`
}

// ForecastRequest asks for a projection of history. Factors are fractions
// (0.2 = 20%); omitted ones fall back to the configured defaults.
type ForecastRequest struct {
	History []domain.DataPoint      `json:"history"`
	Horizon int                     `json:"horizon" validate:"required,min=1,max=60"`
	Factors *domain.FactorOverrides `json:"factors,omitempty"`
}

// AccuracyRequest asks for a back-test of forecast. Factors are percentages.
type AccuracyRequest struct {
	History  []domain.DataPoint      `json:"history"`
	Forecast []domain.DataPoint      `json:"forecast"`
	Periods  int                     `json:"periods"`
	Factors  *domain.FactorOverrides `json:"factors,omitempty"`
}

// RunRequest runs import, normalization, forecast and back-test in one call
type RunRequest struct {
	CSV         string                  `json:"csv" validate:"required"`
	Horizon     int                     `json:"horizon" validate:"omitempty,min=1,max=60"`
	Factors     *domain.FactorOverrides `json:"factors,omitempty"`
	TestPeriods int                     `json:"test_periods" validate:"min=0"`
	TestFactors *domain.FactorOverrides `json:"test_factors,omitempty"`
}

// Export API Requests

// ExportRequest selects what goes into an exported file
type ExportRequest struct {
	// Kind is "dataset" for the training CSV or "forecast" for the merged table.
	// Workbook exports ignore it.
	Kind     string                 `json:"kind" validate:"omitempty,oneof=dataset forecast"`
	History  []domain.DataPoint     `json:"history"`
	Forecast []domain.DataPoint     `json:"forecast"`
	Accuracy *domain.AccuracyResult `json:"accuracy,omitempty"`
}
