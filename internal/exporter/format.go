package exporter

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

// formatFloat writes the shortest representation that round-trips
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatMonth renders t as "Jan 2023"; the zero time reads "Invalid Date"
func FormatMonth(t time.Time) string {
	if t.IsZero() {
		return "Invalid Date"
	}
	return t.Format("Jan 2006")
}

// FormatNumber renders v rounded to a whole number with thousands
// separators. Missing or non-finite values render as "-".
func FormatNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "-"
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", int64(math.Round(*v)))
}
