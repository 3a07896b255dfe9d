package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var monthKeyPattern = regexp.MustCompile(`^[0-9]{4}-(0[1-9]|1[0-2])$`)

// DefaultCategories seeds a fresh install.
var DefaultCategories = []string{"식비", "교통", "주거", "통신", "쇼핑", "의료", "문화", "기타"}

// CategorySettings groups the flat category sets with the monthly goals.
type CategorySettings struct {
	Categories      []string         `json:"categories"`
	FixedCategories []string         `json:"fixedCategories"`
	MonthlyGoals    map[string]int64 `json:"monthlyGoals"`
}

// DefaultCategorySettings returns the seeded settings for a fresh install.
func DefaultCategorySettings() CategorySettings {
	return CategorySettings{
		Categories:      slices.Clone(DefaultCategories),
		FixedCategories: []string{"주거", "통신"},
		MonthlyGoals:    map[string]int64{},
	}
}

// Clone returns a deep copy.
func (c CategorySettings) Clone() CategorySettings {
	goals := make(map[string]int64, len(c.MonthlyGoals))
	for k, v := range c.MonthlyGoals {
		goals[k] = v
	}
	return CategorySettings{
		Categories:      slices.Clone(c.Categories),
		FixedCategories: slices.Clone(c.FixedCategories),
		MonthlyGoals:    goals,
	}
}

// Normalize trims and de-duplicates both sets and drops fixed categories
// that are not categories, keeping FixedCategories a subset of Categories.
func (c *CategorySettings) Normalize() {
	c.Categories = dedupe(c.Categories)
	fixed := make([]string, 0, len(c.FixedCategories))
	for _, f := range dedupe(c.FixedCategories) {
		if slices.Contains(c.Categories, f) {
			fixed = append(fixed, f)
		}
	}
	c.FixedCategories = fixed
	if c.MonthlyGoals == nil {
		c.MonthlyGoals = map[string]int64{}
	}
}

// IsFixed reports whether category counts as a fixed expense.
func (c CategorySettings) IsFixed(category string) bool {
	return slices.Contains(c.FixedCategories, category)
}

// ValidateMonthKey checks a "YYYY-MM" goal key.
func ValidateMonthKey(key string) error {
	if !monthKeyPattern.MatchString(key) {
		return fmt.Errorf("month key %q must look like 2024-06", key)
	}
	return nil
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
