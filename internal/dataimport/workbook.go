package dataimport

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "demandcast/internal/errors"
)

// maxExcelSerial is 9999-12-31 as an Excel date serial
const maxExcelSerial = 2958465

// ParseWorkbook imports the first sheet of an XLSX workbook through the same
// pipeline as CSV text. Date cells stored as Excel serials are converted.
func (im *Importer) ParseWorkbook(ctx context.Context, r io.Reader, previewOnly bool) ParseResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ParseResult{Err: apperrors.NewAppError(apperrors.ErrTypeFormat,
			"could not read workbook", fmt.Errorf("%w: %v", apperrors.ErrFormat, err))}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ParseResult{Err: apperrors.NewFormatError("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return ParseResult{Err: apperrors.NewAppError(apperrors.ErrTypeFormat,
			"could not read sheet "+sheets[0], fmt.Errorf("%w: %v", apperrors.ErrFormat, err))}
	}

	records := workbookRecords(rows)
	im.logger.DebugContext(ctx, "workbook loaded", "sheet", sheets[0], "rows", len(records))

	if len(records) > 1 {
		if layout, err := locateColumns(records[0], im.rules); err == nil {
			convertSerialDates(records[1:], layout.date)
		}
	}

	return im.parseRecords(ctx, records, previewOnly)
}

// workbookRecords trims cells, drops blank rows and pads rows that excelize
// shortened by omitting trailing empty cells.
func workbookRecords(rows [][]string) [][]string {
	var records [][]string
	width := 0
	for _, row := range rows {
		blank := true
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if width == 0 {
			width = len(cells)
		}
		for len(cells) < width {
			cells = append(cells, "")
		}
		records = append(records, cells)
	}
	return records
}

func convertSerialDates(rows [][]string, col int) {
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		serial, err := strconv.ParseFloat(row[col], 64)
		if err != nil || serial <= 0 || serial > maxExcelSerial {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			continue
		}
		row[col] = t.Format("2006-01-02")
	}
}
