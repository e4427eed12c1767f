// Package dataimport turns raw sales tables into dated observations.
//
// A document is tokenized line by line (ParseLine), its date, value and
// optional category columns are located through an ordered rule table, and
// every data row is coerced independently. Rows with the wrong column count,
// an unreadable date or a non-numeric value are skipped and reported in
// ParseResult.Skipped; only document-level problems set ParseResult.Err:
//
//   - fewer than two non-blank lines (errors.ErrFormat)
//   - no date or value column (errors.ErrMissingColumn, also an ErrFormat)
//   - a full parse that yields no valid rows (errors.ErrEmptyResult)
//
// Usage:
//
//	result := dataimport.NewImporter(logger, nil).Parse(ctx, text, false)
//	if result.Err != nil {
//	    return result.Err
//	}
//	series := timeseries.Normalize(result.Data)
//
// Dates accept ISO and long-form layouts first, then slash or dash separated
// parts read as month/day/year, day/month/year and year/month/day in that
// order. All parsed dates are UTC.
package dataimport
