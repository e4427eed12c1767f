// Package exporter writes historical and forecast series out of the service.
//
// Datasets are written as CSV in the same layout the importer accepts, so an
// exported dataset can be uploaded again unchanged. Forecast runs are written
// either as a merged CSV table or as an XLSX workbook with History, Forecast
// and Accuracy sheets.
//
// Example usage:
//
//	err := exporter.WriteFile("out/forecast.csv", func(w io.Writer) error {
//		return exporter.WriteForecastCSV(w, history, projected)
//	})
package exporter
