package dataimport

import (
	"strings"

	apperrors "demandcast/internal/errors"
)

// ColumnRole identifies what a header column carries
type ColumnRole string

const (
	RoleDate     ColumnRole = "date"
	RoleValue    ColumnRole = "value"
	RoleCategory ColumnRole = "category"
)

// ColumnRule matches a lower-cased header name for a role
type ColumnRule struct {
	Role  ColumnRole
	Match func(header string) bool
}

// DefaultColumnRules is the ordered rule table used to locate columns.
// For each role the first header (left to right) accepted by its rule wins.
var DefaultColumnRules = []ColumnRule{
	{
		Role: RoleDate,
		Match: func(h string) bool {
			return h == "date" || strings.Contains(h, "date")
		},
	},
	{
		Role: RoleValue,
		Match: func(h string) bool {
			return h == "value" || h == "sales" ||
				strings.Contains(h, "demand") || strings.Contains(h, "quantity")
		},
	},
	{
		Role: RoleCategory,
		Match: func(h string) bool {
			return h == "category" || strings.Contains(h, "product")
		},
	},
}

// columnLayout holds the resolved column positions, -1 when absent
type columnLayout struct {
	date     int
	value    int
	category int
}

func (l columnLayout) hasCategory() bool {
	return l.category >= 0
}

// locateColumns resolves the rule table against headers.
// Date and value are required; category is optional.
func locateColumns(headers []string, rules []ColumnRule) (columnLayout, error) {
	found := make(map[ColumnRole]int, len(rules))
	for _, rule := range rules {
		if _, ok := found[rule.Role]; ok {
			continue
		}
		for i, h := range headers {
			if rule.Match(strings.ToLower(h)) {
				found[rule.Role] = i
				break
			}
		}
	}

	layout := columnLayout{date: -1, value: -1, category: -1}
	if idx, ok := found[RoleDate]; ok {
		layout.date = idx
	}
	if idx, ok := found[RoleValue]; ok {
		layout.value = idx
	}
	if idx, ok := found[RoleCategory]; ok {
		layout.category = idx
	}

	if layout.date < 0 {
		return layout, apperrors.NewMissingColumnError(string(RoleDate))
	}
	if layout.value < 0 {
		return layout, apperrors.NewMissingColumnError(string(RoleValue))
	}
	return layout, nil
}
