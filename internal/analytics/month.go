package analytics

import (
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/shopspring/decimal"
)

// MonthSummary aggregates one calendar month of the ledger.
type MonthSummary struct {
	Month      string
	Income     int64
	Expense    int64
	Fixed      int64
	ByCategory map[string]int64

	// Goal is the month's expense ceiling, 0 when none is set.
	Goal int64
}

// Net is income minus expense.
func (m MonthSummary) Net() int64 { return m.Income - m.Expense }

// GoalUsed is the spent share of the goal in percent, rounded to one
// decimal. Zero without a goal.
func (m MonthSummary) GoalUsed() decimal.Decimal {
	if m.Goal <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Expense).Div(decimal.NewFromInt(m.Goal)).Mul(hundred).Round(1)
}

// FixedRatio is the fixed share of all expenses in percent.
func (m MonthSummary) FixedRatio() decimal.Decimal {
	if m.Expense == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Fixed).Div(decimal.NewFromInt(m.Expense)).Mul(hundred).Round(1)
}

// OverGoal reports whether spending passed the goal.
func (m MonthSummary) OverGoal() bool {
	return m.Goal > 0 && m.Expense > m.Goal
}

// Summarize totals the entries dated in month ("YYYY-MM").
func Summarize(month string, budgets []domain.BudgetEntry, c domain.CategorySettings) MonthSummary {
	s := MonthSummary{
		Month:      month,
		ByCategory: make(map[string]int64),
		Goal:       c.MonthlyGoals[month],
	}
	for _, e := range budgets {
		if domain.MonthKey(e.Date) != month {
			continue
		}
		if e.Type == domain.EntryIncome {
			s.Income += e.Amount
			continue
		}
		s.Expense += e.Amount
		s.ByCategory[e.Category] += e.Amount
		if c.IsFixed(e.Category) {
			s.Fixed += e.Amount
		}
	}
	return s
}
