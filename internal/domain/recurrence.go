package domain

import (
	"fmt"
	"time"
)

// SavingsCategory tags installment payments that leave a spending account.
const SavingsCategory = "저축"

// MissingSavingsPayments returns one synthesized entry for every installment
// payment that should already have happened (payment day clamped to the
// month's last day, between the product's start and end dates, not after
// today) but has no entry carrying the same savings key. Returned entries have
// no ID or CreatedAt; the caller assigns them.
//
// Running it again over budgets that include its own output yields nothing.
func MissingSavingsPayments(savings []Savings, budgets []BudgetEntry, today time.Time) []BudgetEntry {
	today = DateOf(today)

	covered := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		if k := b.SavingsKey(); k != "" {
			covered[k] = true
		}
	}

	var out []BudgetEntry
	for _, s := range savings {
		if s.Kind != SavingsInstallment || s.PaymentDay < 1 || s.MonthlyAmount <= 0 {
			continue
		}
		start := DateOf(s.StartDate)
		end := DateOf(s.EndDate)

		y, m := start.Year(), start.Month()
		for {
			pay := ClampedDate(y, m, s.PaymentDay)
			if pay.After(today) || (!end.IsZero() && pay.After(end)) {
				break
			}
			if !pay.Before(start) {
				month := MonthKey(pay)
				key := SavingsPaymentKey(s.ID, month)
				if !covered[key] {
					covered[key] = true
					out = append(out, installmentEntry(s, pay, month))
				}
			}
			m++
			if m > time.December {
				m = time.January
				y++
			}
		}
	}
	return out
}

// installmentEntry builds the ledger line for one payment. With a linked
// account the payment is income into the account that mirrors the product;
// without one it is a savings expense from the default account.
func installmentEntry(s Savings, pay time.Time, month string) BudgetEntry {
	e := BudgetEntry{
		Title:        fmt.Sprintf("%s 납입", s.DisplayName()),
		Amount:       s.MonthlyAmount,
		Date:         pay,
		SavingsID:    s.ID,
		PaymentMonth: month,
	}
	if s.LinkedAccount != "" {
		e.Type = EntryIncome
		e.Account = s.LinkedAccount
		return e
	}
	e.Type = EntryExpense
	e.Account = DefaultAccount
	e.Category = SavingsCategory
	return e
}
