package formatter

import (
	"maps"
	"slices"

	"github.com/alexanderramin/hearth/internal/analytics"
	"github.com/alexanderramin/hearth/internal/domain"
)

// FormatCategories renders names with a marker on fixed-cost categories.
func FormatCategories(names []string, c domain.CategorySettings) string {
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		fixed := ""
		if c.IsFixed(n) {
			fixed = StyleYellow.Render("fixed")
		}
		rows = append(rows, []string{n, fixed})
	}
	return RenderTable([]string{"CATEGORY", ""}, rows)
}

// FormatGoals renders the monthly spending goals, latest month first.
func FormatGoals(goals map[string]int64) string {
	months := slices.Sorted(maps.Keys(goals))
	slices.Reverse(months)
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{m, analytics.FormatWon(goals[m])})
	}
	return RenderAlignedTable([]string{"MONTH", "GOAL"}, []Align{AlignLeft, AlignRight}, rows)
}
