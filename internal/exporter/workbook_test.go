package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"demandcast/internal/forecast"
	"demandcast/pkg/contracts/domain"
)

func TestWriteWorkbook(t *testing.T) {
	report := WorkbookReport{
		History: []domain.DataPoint{
			domain.NewObservation(month(2023, time.November), 800, "Beauty"),
			domain.NewObservation(month(2023, time.December), 1100, "Beauty"),
		},
		Forecast: []domain.DataPoint{
			domain.NewProjection(month(2024, time.January), 650, "Beauty"),
		},
		Accuracy: &domain.AccuracyResult{MAPE: 4.5, RMSE: 12, Accuracy: 95.5},
		Backtest: []forecast.BacktestPoint{
			{Date: month(2024, time.January), Forecast: 650, Actual: 700, AbsoluteError: 50, PercentageError: 50.0 / 7},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetHistory, SheetForecast, SheetAccuracy}, f.GetSheetList())

	history, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Category", "Actual"},
		{"2023-11-01", "Beauty", "800"},
		{"2023-12-01", "Beauty", "1100"},
	}, history)

	projected, err := f.GetRows(SheetForecast)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Category", "Forecast"},
		{"2024-01-01", "Beauty", "650"},
	}, projected)

	accuracy, err := f.GetRows(SheetAccuracy)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(accuracy), 7)
	assert.Equal(t, []string{"Metric", "Value"}, accuracy[0])
	assert.Equal(t, []string{"MAPE", "4.5"}, accuracy[1])
	assert.Equal(t, []string{"Accuracy", "95.5"}, accuracy[3])
	assert.Equal(t, "Absolute Error", accuracy[5][3])
	assert.Equal(t, []string{"2024-01-01", "650", "700", "50"}, accuracy[6][:4])
}

func TestWriteWorkbook_NoAccuracy(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, WorkbookReport{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetAccuracy)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Metric", "Value"}}, rows)
}
