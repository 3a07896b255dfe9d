// Package analytics holds the read-only formulas behind the summaries:
// savings interest, portfolio valuation and monthly spending ratios.
package analytics

import (
	"time"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/shopspring/decimal"
)

// InterestTaxRate is the flat tax withheld from savings interest (15.4%).
var InterestTaxRate = decimal.RequireFromString("0.154")

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Maturity is what a savings product pays out at its end date.
type Maturity struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Tax       decimal.Decimal
	Payout    decimal.Decimal
}

// SavingsMaturity computes simple interest for the product's term. A
// deposit earns on its principal for every month; an installment plan earns
// on each payment for the months it stays in, so payment k of n earns for
// n-k+1 months.
func SavingsMaturity(s domain.Savings) Maturity {
	months := int64(s.Months())
	rate := s.Rate.Div(hundred)

	var principal, interest decimal.Decimal
	switch s.Kind {
	case domain.SavingsDeposit:
		principal = decimal.NewFromInt(s.Principal)
		interest = principal.Mul(rate).Mul(decimal.NewFromInt(months)).Div(twelve)
	case domain.SavingsInstallment:
		monthly := decimal.NewFromInt(s.MonthlyAmount)
		principal = monthly.Mul(decimal.NewFromInt(months))
		monthSum := decimal.NewFromInt(months * (months + 1) / 2)
		interest = monthly.Mul(rate).Mul(monthSum).Div(twelve)
	}
	principal = principal.Add(decimal.NewFromInt(s.InitialBalance))

	interest = interest.Floor()
	tax := interest.Mul(InterestTaxRate).Floor()
	return Maturity{
		Principal: principal,
		Interest:  interest,
		Tax:       tax,
		Payout:    principal.Add(interest).Sub(tax),
	}
}

// PaidIn sums the payments already recorded for the product, plus its
// initial balance.
func PaidIn(s domain.Savings, budgets []domain.BudgetEntry) int64 {
	total := s.InitialBalance
	for _, e := range budgets {
		if e.SavingsID == s.ID {
			total += e.Amount
		}
	}
	return total
}

// Progress is the share of the term elapsed at today, between 0 and 1.
func Progress(s domain.Savings, today time.Time) decimal.Decimal {
	start, end := domain.DateOf(s.StartDate), domain.DateOf(s.EndDate)
	total := end.Sub(start)
	if total <= 0 {
		return decimal.NewFromInt(1)
	}
	elapsed := domain.DateOf(today).Sub(start)
	p := decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(total)))
	return decimal.Min(decimal.Max(p, decimal.Zero), decimal.NewFromInt(1))
}
