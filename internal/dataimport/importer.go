package dataimport

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	apperrors "demandcast/internal/errors"
	"demandcast/pkg/contracts/domain"
)

// Skip reasons recorded on RowIssue
const (
	ReasonColumnCount  = "column_count"
	ReasonInvalidDate  = "invalid_date"
	ReasonInvalidValue = "invalid_value"
)

// RowIssue describes a data row that was excluded from the result
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

// ParseResult is the outcome of importing one document.
// Err is set for document-level failures only; skipped rows never set it.
type ParseResult struct {
	Headers []string           `json:"headers"`
	Rows    [][]string         `json:"rows"`
	Data    []domain.DataPoint `json:"data"`
	Skipped []RowIssue         `json:"skipped,omitempty"`
	Err     error              `json:"-"`
}

// Importer turns tabular text into observations
type Importer struct {
	logger     *slog.Logger
	categories []domain.Category
	rules      []ColumnRule
}

// NewImporter creates an importer. A nil logger uses slog.Default and nil
// categories use domain.DefaultCategories for rows without a category column.
func NewImporter(logger *slog.Logger, categories []domain.Category) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	if categories == nil {
		categories = domain.DefaultCategories
	}
	return &Importer{
		logger:     logger.With(slog.String("component", "importer")),
		categories: categories,
		rules:      DefaultColumnRules,
	}
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParseCSV imports CSV text with the default importer
func ParseCSV(text string, previewOnly bool) ParseResult {
	return NewImporter(nil, nil).Parse(context.Background(), text, previewOnly)
}

// Parse imports CSV text. In preview mode rows are returned without
// date or value coercion and no "no valid rows" error is reported.
func (im *Importer) Parse(ctx context.Context, text string, previewOnly bool) ParseResult {
	var records [][]string
	for _, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, ParseLine(line))
	}
	return im.parseRecords(ctx, records, previewOnly)
}

// parseRecords runs the shared pipeline over already tokenized records.
// records[0] is the header row.
func (im *Importer) parseRecords(ctx context.Context, records [][]string, previewOnly bool) ParseResult {
	result := ParseResult{
		Rows: [][]string{},
		Data: []domain.DataPoint{},
	}

	if len(records) < 2 {
		result.Err = apperrors.NewFormatError("file must contain headers and at least one row of data")
		return result
	}

	result.Headers = records[0]

	layout, err := locateColumns(result.Headers, im.rules)
	if err != nil {
		result.Err = err
		return result
	}

	im.logger.DebugContext(ctx, "located columns",
		"date", layout.date,
		"value", layout.value,
		"category", layout.category,
	)

	for i := 1; i < len(records); i++ {
		row := records[i]
		if len(row) != len(result.Headers) {
			result.Skipped = append(result.Skipped, RowIssue{Line: i, Reason: ReasonColumnCount})
			im.logger.DebugContext(ctx, "row skipped",
				"line", i,
				"reason", ReasonColumnCount,
				"columns", len(row),
				"expected", len(result.Headers),
			)
			continue
		}

		result.Rows = append(result.Rows, row)
		if previewOnly {
			continue
		}

		point, issue, ok := im.parseRow(i, row, layout)
		if !ok {
			result.Skipped = append(result.Skipped, issue)
			im.logger.DebugContext(ctx, "row skipped",
				"line", i,
				"reason", issue.Reason,
				"value", issue.Value,
			)
			continue
		}
		result.Data = append(result.Data, point)
	}

	result.Data = domain.SortByDate(result.Data)

	if len(result.Data) == 0 && !previewOnly {
		result.Err = apperrors.NewEmptyResultError(len(records) - 1)
		return result
	}

	im.logger.InfoContext(ctx, "dataset parsed",
		"rows", len(result.Rows),
		"points", len(result.Data),
		"skipped", len(result.Skipped),
		"preview", previewOnly,
	)

	return result
}

// parseRow coerces one row. line is the 1-based index among non-blank lines.
func (im *Importer) parseRow(line int, row []string, layout columnLayout) (domain.DataPoint, RowIssue, bool) {
	date, ok := ParseDate(row[layout.date])
	if !ok {
		return domain.DataPoint{}, RowIssue{Line: line, Reason: ReasonInvalidDate, Value: row[layout.date]}, false
	}

	value, ok := ParseValue(row[layout.value])
	if !ok {
		return domain.DataPoint{}, RowIssue{Line: line, Reason: ReasonInvalidValue, Value: row[layout.value]}, false
	}

	return domain.NewObservation(date, value, im.categoryFor(line, row, layout)), RowIssue{}, true
}

// categoryFor reads the category cell, or rotates through the configured
// categories by line index when the document has no category column.
func (im *Importer) categoryFor(line int, row []string, layout columnLayout) string {
	if layout.hasCategory() {
		return strings.TrimSpace(row[layout.category])
	}
	if len(im.categories) == 0 {
		return ""
	}
	return im.categories[line%len(im.categories)].Name
}
