package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidInvestment = errors.New("invalid investment")

// Investment is a holding of one listed instrument.
type Investment struct {
	ID       string          `json:"id"`
	Kind     InvestmentKind  `json:"type"`
	Ticker   string          `json:"ticker"`
	Name     string          `json:"name"`
	Market   string          `json:"market,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
	Currency string          `json:"currency"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (i *Investment) Validate() error {
	if strings.TrimSpace(i.Ticker) == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidInvestment)
	}
	if i.Kind != InvestmentDomestic && i.Kind != InvestmentForeign {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInvestment, i.Kind)
	}
	if i.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInvestment)
	}
	if i.AvgPrice.IsNegative() {
		return fmt.Errorf("%w: average price cannot be negative", ErrInvalidInvestment)
	}
	return nil
}

// DefaultCurrency returns KRW for domestic and USD for foreign holdings.
func (k InvestmentKind) DefaultCurrency() string {
	if k == InvestmentForeign {
		return "USD"
	}
	return "KRW"
}

// CostBasis is quantity times average price.
func (i Investment) CostBasis() decimal.Decimal {
	return i.Quantity.Mul(i.AvgPrice)
}
