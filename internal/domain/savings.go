package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidSavings = errors.New("invalid savings product")

// Savings is a bank product: a lump-sum deposit or a monthly installment plan.
type Savings struct {
	ID        string          `json:"id"`
	Kind      SavingsKind     `json:"type"`
	Name      string          `json:"name"`
	Bank      string          `json:"bank"`
	Rate      decimal.Decimal `json:"rate"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`

	// Deposit only.
	Principal int64 `json:"principal,omitempty"`

	// Installment only.
	MonthlyAmount int64 `json:"monthlyAmount,omitempty"`
	PaymentDay    int   `json:"paymentDay,omitempty"`

	// InitialBalance is money already paid in before tracking started.
	InitialBalance int64 `json:"initialBalance,omitempty"`
	// LinkedAccount names the account that mirrors this product's cash flow.
	LinkedAccount string `json:"linkedAccount,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (s *Savings) Validate() error {
	if strings.TrimSpace(s.Bank) == "" {
		return fmt.Errorf("%w: bank is required", ErrInvalidSavings)
	}
	if s.Rate.IsNegative() {
		return fmt.Errorf("%w: rate cannot be negative", ErrInvalidSavings)
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidSavings)
	}
	if s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("%w: ends before it starts", ErrInvalidSavings)
	}
	switch s.Kind {
	case SavingsDeposit:
		if s.Principal <= 0 {
			return fmt.Errorf("%w: deposit principal must be positive", ErrInvalidSavings)
		}
	case SavingsInstallment:
		if s.MonthlyAmount <= 0 {
			return fmt.Errorf("%w: monthly amount must be positive", ErrInvalidSavings)
		}
		if s.PaymentDay < 1 || s.PaymentDay > 31 {
			return fmt.Errorf("%w: payment day %d must be 1-31", ErrInvalidSavings, s.PaymentDay)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSavings, s.Kind)
	}
	return nil
}

// DisplayName prefers the product name and falls back to the bank.
func (s Savings) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Bank
}

// Months is the number of whole months between start and end.
func (s Savings) Months() int {
	months := (s.EndDate.Year()-s.StartDate.Year())*12 + int(s.EndDate.Month()-s.StartDate.Month())
	if months < 0 {
		return 0
	}
	return months
}
