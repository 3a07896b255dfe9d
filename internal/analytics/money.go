package analytics

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders a major-unit amount in currency, e.g. "₩4,500" or
// "$12.30".
func Format(amount decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatWon renders whole won.
func FormatWon(amount int64) string {
	return money.New(amount, money.KRW).Display()
}

// Signed prefixes positive amounts with "+".
func Signed(amount int64) string {
	if amount > 0 {
		return "+" + FormatWon(amount)
	}
	return FormatWon(amount)
}
