package formatter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/alexanderramin/hearth/internal/analytics"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// FormatInvestments renders holdings at cost and, for tickers present in
// prices, at market value. Totals are per currency.
func FormatInvestments(invs []domain.Investment, prices map[string]decimal.Decimal) string {
	headers := []string{"ID", "TICKER", "NAME", "QTY", "AVG", "COST", "VALUE", "RETURN"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight}

	byCurrency := make(map[string][]analytics.Valuation)
	rows := make([][]string, 0, len(invs))
	for _, inv := range invs {
		cost := inv.CostBasis()
		value, ret := Dim("--"), Dim("--")
		if price, ok := prices[strings.ToUpper(inv.Ticker)]; ok {
			v := analytics.Value(inv, price)
			byCurrency[inv.Currency] = append(byCurrency[inv.Currency], v)
			value = analytics.Format(v.Value, inv.Currency)
			ret = returnStyle(v.Return).Render(v.Return.StringFixed(2) + "%")
		}
		rows = append(rows, []string{
			TruncID(inv.ID),
			Bold(strings.ToUpper(inv.Ticker)),
			orDash(inv.Name),
			inv.Quantity.String(),
			analytics.Format(inv.AvgPrice, inv.Currency),
			analytics.Format(cost, inv.Currency),
			value,
			ret,
		})
	}

	var b strings.Builder
	b.WriteString(RenderAlignedTable(headers, align, rows))

	totals := analytics.Totals(byCurrency)
	for _, cur := range slices.Sorted(maps.Keys(totals)) {
		t := totals[cur]
		fmt.Fprintf(&b, "%s %s → %s %s\n",
			Dim(cur),
			analytics.Format(t.Cost, cur),
			Bold(analytics.Format(t.Value, cur)),
			returnStyle(t.Return).Render("("+t.Return.StringFixed(2)+"%)"))
	}
	return b.String()
}

func returnStyle(pct decimal.Decimal) lipgloss.Style {
	return AmountStyle(int64(pct.Sign()))
}

// FormatSavings renders each product with term progress, the amount paid in
// so far and its projected payout after interest tax.
func FormatSavings(savings []domain.Savings, budgets []domain.BudgetEntry, today time.Time) string {
	headers := []string{"ID", "PRODUCT", "KIND", "RATE", "TERM", "PAID IN", "PAYOUT", "PROGRESS"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignRight, AlignRight, AlignLeft}

	rows := make([][]string, 0, len(savings))
	for _, s := range savings {
		kind := StyleBlue.Render("deposit")
		if s.Kind == domain.SavingsInstallment {
			kind = StylePurple.Render(fmt.Sprintf("monthly %s on %d", analytics.FormatWon(s.MonthlyAmount), s.PaymentDay))
		}
		name := Bold(s.DisplayName())
		if s.Name != "" {
			name += " " + Dim(s.Bank)
		}
		m := analytics.SavingsMaturity(s)
		rows = append(rows, []string{
			TruncID(s.ID),
			name,
			kind,
			s.Rate.String() + "%",
			fmt.Sprintf("%s → %s", s.StartDate.Format(domain.DateLayout), s.EndDate.Format(domain.DateLayout)),
			analytics.FormatWon(analytics.PaidIn(s, budgets)),
			StyleGreen.Render(analytics.Format(m.Payout, money.KRW)),
			RenderProgress(analytics.Progress(s, today).InexactFloat64(), 10),
		})
	}
	return RenderAlignedTable(headers, align, rows)
}
