package dataimport

import (
	"strconv"
	"strings"
)

var valueCleaner = strings.NewReplacer("$", "", "£", "", "€", "", ",", "")

// ParseValue interprets a raw value cell.
//
// Currency symbols and thousands separators are removed, then the longest
// leading numeric prefix is parsed, so "12.5 units" reads as 12.5.
func ParseValue(raw string) (float64, bool) {
	s := strings.TrimSpace(valueCleaner.Replace(raw))
	prefix := numericPrefix(s)
	if prefix == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numericPrefix returns the longest prefix of s that is a decimal float literal
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
