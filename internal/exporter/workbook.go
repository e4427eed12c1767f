package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"demandcast/internal/forecast"
	"demandcast/pkg/contracts/domain"
)

// Sheet names of an exported workbook
const (
	SheetHistory  = "History"
	SheetForecast = "Forecast"
	SheetAccuracy = "Accuracy"
)

// WorkbookReport is everything a forecast run puts into a workbook.
// Accuracy and Backtest are optional.
type WorkbookReport struct {
	History  []domain.DataPoint
	Forecast []domain.DataPoint
	Accuracy *domain.AccuracyResult
	Backtest []forecast.BacktestPoint
}

// WriteWorkbook writes report as an XLSX workbook to w
func WriteWorkbook(w io.Writer, report WorkbookReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetHistory); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetForecast, SheetAccuracy} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	history := seriesRows(report.History, func(p domain.DataPoint) *float64 { return p.Actual })
	if err := writeTable(f, SheetHistory, header, []interface{}{"Date", "Category", "Actual"}, history); err != nil {
		return err
	}

	projected := seriesRows(report.Forecast, func(p domain.DataPoint) *float64 { return p.Forecast })
	if err := writeTable(f, SheetForecast, header, []interface{}{"Date", "Category", "Forecast"}, projected); err != nil {
		return err
	}

	if err := writeAccuracy(f, header, report); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func seriesRows(points []domain.DataPoint, value func(domain.DataPoint) *float64) [][]interface{} {
	rows := make([][]interface{}, 0, len(points))
	for _, p := range points {
		var cell interface{}
		if v := value(p); v != nil {
			cell = *v
		}
		rows = append(rows, []interface{}{formatDate(p.Date), p.Category, cell})
	}
	return rows
}

func writeAccuracy(f *excelize.File, header int, report WorkbookReport) error {
	var metrics [][]interface{}
	if report.Accuracy != nil {
		metrics = [][]interface{}{
			{"MAPE", report.Accuracy.MAPE},
			{"RMSE", report.Accuracy.RMSE},
			{"Accuracy", report.Accuracy.Accuracy},
		}
	}
	if err := writeTable(f, SheetAccuracy, header, []interface{}{"Metric", "Value"}, metrics); err != nil {
		return err
	}
	if len(report.Backtest) == 0 {
		return nil
	}

	// Per-point detail sits below the summary, separated by a blank row
	start := len(metrics) + 3
	detailHeader := []interface{}{"Date", "Forecast", "Actual", "Absolute Error", "Percentage Error", "Excluded"}
	if err := setRow(f, SheetAccuracy, start, detailHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetAccuracy, start, start, header); err != nil {
		return fmt.Errorf("failed to style %s header: %w", SheetAccuracy, err)
	}
	for i, p := range report.Backtest {
		row := []interface{}{formatDate(p.Date), p.Forecast, p.Actual, p.AbsoluteError, p.PercentageError, p.Excluded}
		if err := setRow(f, SheetAccuracy, start+1+i, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header int, headers []interface{}, rows [][]interface{}) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 16)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
