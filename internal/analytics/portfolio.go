package analytics

import (
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/shopspring/decimal"
)

// Valuation is a holding marked to a price.
type Valuation struct {
	Cost   decimal.Decimal
	Value  decimal.Decimal
	Gain   decimal.Decimal
	Return decimal.Decimal // percent, two decimals
}

// Value marks inv to price. A zero cost basis yields a zero return.
func Value(inv domain.Investment, price decimal.Decimal) Valuation {
	cost := inv.CostBasis()
	value := inv.Quantity.Mul(price)
	gain := value.Sub(cost)
	ret := decimal.Zero
	if !cost.IsZero() {
		ret = gain.Div(cost).Mul(hundred).Round(2)
	}
	return Valuation{Cost: cost, Value: value, Gain: gain, Return: ret}
}

// Totals sums valuations per currency.
func Totals(vals map[string][]Valuation) map[string]Valuation {
	out := make(map[string]Valuation, len(vals))
	for cur, vs := range vals {
		var t Valuation
		for _, v := range vs {
			t.Cost = t.Cost.Add(v.Cost)
			t.Value = t.Value.Add(v.Value)
		}
		t.Gain = t.Value.Sub(t.Cost)
		if !t.Cost.IsZero() {
			t.Return = t.Gain.Div(t.Cost).Mul(hundred).Round(2)
		}
		out[cur] = t
	}
	return out
}
