package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidEntry = errors.New("invalid budget entry")

// DefaultAccount is the account every fresh install starts with.
const DefaultAccount = "기본"

// BudgetEntry is one ledger line. Amount is always a magnitude; Type carries
// the sign.
type BudgetEntry struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Memo     string    `json:"memo,omitempty"`
	Amount   int64     `json:"money"`
	Type     EntryType `json:"type"`
	Date     time.Time `json:"date"`
	Category string    `json:"category,omitempty"`
	Account  string    `json:"account,omitempty"`

	// Savings linkage, set only on auto-generated installment payments.
	SavingsID    string `json:"savingsId,omitempty"`
	PaymentMonth string `json:"paymentMonth,omitempty"`

	AuthorID  string    `json:"authorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBudgetEntry normalizes a possibly signed amount into magnitude + type.
// A negative amount always means an expense; a positive amount keeps the
// given type, defaulting to income when none is given.
func NewBudgetEntry(title string, signedOrMagnitude int64, typ EntryType, date time.Time) BudgetEntry {
	e := BudgetEntry{Title: title, Date: DateOf(date), Type: typ}
	switch {
	case signedOrMagnitude < 0:
		e.Amount = -signedOrMagnitude
		e.Type = EntryExpense
	default:
		e.Amount = signedOrMagnitude
		if e.Type == "" {
			e.Type = EntryIncome
		}
	}
	return e
}

// Signed returns the amount with its sign: negative for expenses.
func (e BudgetEntry) Signed() int64 {
	if e.Type == EntryExpense {
		return -e.Amount
	}
	return e.Amount
}

// FromSigned sets Amount and Type from a signed amount.
func (e *BudgetEntry) FromSigned(amount int64) {
	if amount < 0 {
		e.Amount = -amount
		e.Type = EntryExpense
		return
	}
	e.Amount = amount
	e.Type = EntryIncome
}

func (e *BudgetEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEntry)
	}
	if e.Amount < 0 {
		return fmt.Errorf("%w: amount must be a magnitude", ErrInvalidEntry)
	}
	if e.Type != EntryIncome && e.Type != EntryExpense {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, e.Type)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	return nil
}

// SavingsKey identifies the installment payment an entry materializes.
// Empty for entries that are not linked to a savings product.
func (e BudgetEntry) SavingsKey() string {
	if e.SavingsID == "" || e.PaymentMonth == "" {
		return ""
	}
	return SavingsPaymentKey(e.SavingsID, e.PaymentMonth)
}

// SavingsPaymentKey composes the idempotency key for one monthly payment.
func SavingsPaymentKey(savingsID, month string) string {
	return savingsID + ":" + month
}
