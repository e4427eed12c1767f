package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"demandcast/pkg/contracts/domain"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteDatasetCSV writes points as a training dataset: date,value and, when
// any point is categorized, a category column. Missing actuals are written as 0.
func WriteDatasetCSV(w io.Writer, points []domain.DataPoint) error {
	withCategory := false
	for _, p := range points {
		if p.Category != "" {
			withCategory = true
			break
		}
	}

	headers := []string{"date", "value"}
	if withCategory {
		headers = append(headers, "category")
	}

	records := make([][]string, 0, len(points))
	for _, p := range points {
		record := []string{formatDate(p.Date), formatFloat(p.ActualValue())}
		if withCategory {
			record = append(record, p.Category)
		}
		records = append(records, record)
	}

	return WriteCSV(w, WriteOptions{Headers: headers, Records: records})
}

// ForecastRow is one line of the merged history and forecast table
type ForecastRow struct {
	Date     string
	Category string
	Actual   *float64
	Forecast *float64
}

// MergeSeries joins history and forecast on (month, category), ordered by
// month then category. Observed and projected values for the same key share a row.
func MergeSeries(history, forecast []domain.DataPoint) []ForecastRow {
	type key struct {
		month    domain.MonthKey
		category string
	}

	rows := map[key]*ForecastRow{}
	var keys []key
	row := func(p domain.DataPoint) *ForecastRow {
		k := key{month: p.MonthKey(), category: p.Category}
		if r, ok := rows[k]; ok {
			return r
		}
		r := &ForecastRow{Date: formatDate(k.month.Start()), Category: p.Category}
		rows[k] = r
		keys = append(keys, k)
		return r
	}

	for _, p := range history {
		if !p.HasValidDate() || p.Actual == nil {
			continue
		}
		row(p).Actual = domain.Float(*p.Actual)
	}
	for _, p := range forecast {
		if !p.HasValidDate() || p.Forecast == nil {
			continue
		}
		row(p).Forecast = domain.Float(*p.Forecast)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month.Before(keys[j].month)
		}
		return keys[i].category < keys[j].category
	})

	out := make([]ForecastRow, len(keys))
	for i, k := range keys {
		out[i] = *rows[k]
	}
	return out
}

// WriteForecastCSV writes the merged table date,category,actual,forecast.
// Absent values are left empty.
func WriteForecastCSV(w io.Writer, history, forecast []domain.DataPoint) error {
	merged := MergeSeries(history, forecast)

	records := make([][]string, len(merged))
	for i, r := range merged {
		records[i] = []string{r.Date, r.Category, formatOptional(r.Actual), formatOptional(r.Forecast)}
	}

	return WriteCSV(w, WriteOptions{
		Headers: []string{"date", "category", "actual", "forecast"},
		Records: records,
	})
}

// WriteFile creates path (and its directory) and streams write into it
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	slog.Debug("export written", slog.String("file_path", path))
	return nil
}
