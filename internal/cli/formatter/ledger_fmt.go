package formatter

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/alexanderramin/hearth/internal/analytics"
	"github.com/alexanderramin/hearth/internal/domain"
)

var ledgerAlign = []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight}

// FormatLedger renders entries newest first with signed, colored amounts.
// Auto-generated savings payments are marked with "↻".
func FormatLedger(entries []domain.BudgetEntry, grp domain.Group) string {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b domain.BudgetEntry) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	headers := []string{"DATE", "ID", "TITLE", "CATEGORY", "ACCOUNT", "AMOUNT"}
	rows := make([][]string, 0, len(sorted))
	for _, e := range sorted {
		title := e.Title
		if e.SavingsID != "" {
			title = StylePurple.Render("↻ ") + title
		}
		if e.AuthorID != "" {
			title += " " + Dim("·") + " " + memberLabel(grp, e.AuthorID)
		}
		signed := e.Signed()
		rows = append(rows, []string{
			e.Date.Format(domain.DateLayout),
			TruncID(e.ID),
			title,
			orDash(e.Category),
			orDash(e.Account),
			AmountStyle(signed).Render(analytics.Signed(signed)),
		})
	}
	return RenderAlignedTable(headers, ledgerAlign, rows)
}

// FormatMonthSummary renders income, spending, the goal bar and the
// per-category breakdown for one month.
func FormatMonthSummary(s analytics.MonthSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Dim("Income "), StyleGreen.Render(analytics.FormatWon(s.Income)))
	fmt.Fprintf(&b, "%s  %s\n", Dim("Expense"), StyleRed.Render(analytics.FormatWon(s.Expense)))
	net := s.Net()
	fmt.Fprintf(&b, "%s  %s\n", Dim("Net    "), AmountStyle(net).Render(analytics.Signed(net)))

	if s.Goal > 0 {
		used := s.GoalUsed()
		fmt.Fprintf(&b, "\n%s  %s %s%% of %s\n",
			Dim("Goal   "),
			RenderGoalBar(used.InexactFloat64()/100, 20),
			used.String(),
			analytics.FormatWon(s.Goal))
		if s.OverGoal() {
			b.WriteString(StyleRed.Render("  over the monthly goal by "+analytics.FormatWon(s.Expense-s.Goal)) + "\n")
		}
	}
	if s.Fixed > 0 {
		fmt.Fprintf(&b, "%s  %s (%s%%)\n", Dim("Fixed  "), analytics.FormatWon(s.Fixed), s.FixedRatio().String())
	}

	if len(s.ByCategory) > 0 {
		names := slices.SortedFunc(maps.Keys(s.ByCategory), func(a, c string) int {
			return cmp.Compare(s.ByCategory[c], s.ByCategory[a])
		})
		rows := make([][]string, 0, len(names))
		for _, n := range names {
			label := n
			if label == "" {
				label = "(none)"
			}
			rows = append(rows, []string{label, analytics.FormatWon(s.ByCategory[n])})
		}
		b.WriteString("\n")
		b.WriteString(RenderAlignedTable([]string{"CATEGORY", "SPENT"}, []Align{AlignLeft, AlignRight}, rows))
	}

	return RenderBox(s.Month, strings.TrimRight(b.String(), "\n"))
}
