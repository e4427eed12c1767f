package dataimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// nativeLayouts are tried before any field reordering
var nativeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
}

var dateSeparators = regexp.MustCompile(`[/-]`)

// dateOrder maps the three split parts onto year, month, day positions
type dateOrder struct {
	name             string
	year, month, day int
}

// Reorderings are tried in this order; the first valid calendar date wins.
var dateOrders = []dateOrder{
	{name: "month/day/year", year: 2, month: 0, day: 1},
	{name: "day/month/year", year: 2, month: 1, day: 0},
	{name: "year/month/day", year: 0, month: 1, day: 2},
}

// ParseDate interprets a raw date cell. Results are in UTC.
// It reports false when no layout or reordering yields a real calendar date.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range nativeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	// ISO date followed by a time part no layout covers
	if len(s) > len(isoDate) && (s[len(isoDate)] == 'T' || s[len(isoDate)] == ' ') {
		if t, err := time.Parse(isoDate, s[:len(isoDate)]); err == nil {
			return t, true
		}
	}

	parts := dateSeparators.Split(s, -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	for _, order := range dateOrders {
		iso := fmt.Sprintf("%s-%s-%s",
			strings.TrimSpace(parts[order.year]),
			padTwo(parts[order.month]),
			padTwo(parts[order.day]),
		)
		if t, err := time.Parse(isoDate, iso); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// padTwo left-pads a numeric part to two digits
func padTwo(part string) string {
	part = strings.TrimSpace(part)
	if _, err := strconv.Atoi(part); err != nil {
		return part
	}
	if len(part) == 1 {
		return "0" + part
	}
	return part
}
