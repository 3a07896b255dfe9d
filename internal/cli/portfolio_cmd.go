package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newInvestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invest",
		Short: "Track stock holdings (never shared with a group)",
	}

	cmd.AddCommand(
		newInvestAddCmd(app),
		newInvestListCmd(app),
		newInvestEditCmd(app),
		newInvestRemoveCmd(app),
	)

	return cmd
}

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q", flag, s)
	}
	return d, nil
}

func newInvestAddCmd(app *App) *cobra.Command {
	var (
		qty, avg, name, market, currency string
		foreign                          bool
	)

	cmd := &cobra.Command{
		Use:   "add TICKER",
		Short: "Add a holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseDecimal("qty", qty)
			if err != nil {
				return err
			}
			p, err := parseDecimal("avg", avg)
			if err != nil {
				return err
			}
			kind := domain.InvestmentDomestic
			if foreign {
				kind = domain.InvestmentForeign
			}

			inv, err := app.Store.AddInvestment(cmd.Context(), domain.Investment{
				Kind:     kind,
				Ticker:   strings.ToUpper(args[0]),
				Name:     name,
				Market:   market,
				Quantity: q,
				AvgPrice: p,
				Currency: strings.ToUpper(currency),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s × %s\n", formatter.TruncID(inv.ID), inv.Ticker, inv.Quantity)
			return nil
		},
	}

	cmd.Flags().StringVar(&qty, "qty", "", "Quantity held")
	cmd.Flags().StringVar(&avg, "avg", "", "Average purchase price")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&market, "market", "", "Market (e.g. KOSPI, NASDAQ)")
	cmd.Flags().StringVar(&currency, "currency", "", "Price currency (default KRW, USD with --foreign)")
	cmd.Flags().BoolVar(&foreign, "foreign", false, "Foreign listing")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("avg")
	return cmd
}

func newInvestListCmd(app *App) *cobra.Command {
	var prices map[string]string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List holdings, valued at --price TICKER=PRICE where given",
		RunE: func(cmd *cobra.Command, args []string) error {
			marks := make(map[string]decimal.Decimal, len(prices))
			for ticker, raw := range prices {
				d, err := parseDecimal("price", raw)
				if err != nil {
					return err
				}
				marks[strings.ToUpper(ticker)] = d
			}

			invs := app.Store.Snapshot().Investments
			if len(invs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No investments found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatInvestments(invs, marks))
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&prices, "price", nil, "Current price per ticker (TICKER=PRICE, repeatable)")
	return cmd
}

func newInvestEditCmd(app *App) *cobra.Command {
	var qty, avg string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change quantity or average price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveInvestment(app, args[0])
			if err != nil {
				return err
			}
			var q, p *decimal.Decimal
			if qty != "" {
				d, err := parseDecimal("qty", qty)
				if err != nil {
					return err
				}
				q = &d
			}
			if avg != "" {
				d, err := parseDecimal("avg", avg)
				if err != nil {
					return err
				}
				p = &d
			}
			ok, err := app.Store.UpdateInvestment(cmd.Context(), id, func(inv *domain.Investment) {
				if q != nil {
					inv.Quantity = *q
				}
				if p != nil {
					inv.AvgPrice = *p
				}
			})
			if err := notFound(ok, err, "investment", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated investment %s\n", formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&qty, "qty", "", "New quantity")
	cmd.Flags().StringVar(&avg, "avg", "", "New average price")
	return cmd
}

func newInvestRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a holding",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveInvestment(app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.Store.DeleteInvestment(cmd.Context(), id)
			if err := notFound(ok, err, "investment", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted investment %s\n", formatter.TruncID(id))
			return nil
		},
	}
}

func resolveInvestment(app *App, input string) (string, error) {
	return resolveID(app.Store.Snapshot().Investments, func(i domain.Investment) string { return i.ID }, input, "investment")
}

func newSavingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Track deposits and installment savings",
	}

	cmd.AddCommand(
		newSavingsAddCmd(app),
		newSavingsListCmd(app),
		newSavingsRemoveCmd(app),
		newSavingsSyncCmd(app),
	)

	return cmd
}

func newSavingsAddCmd(app *App) *cobra.Command {
	var (
		bank, name, rate, account   string
		principal, monthly, initial string
		day                         int
		installment                 bool
		start, end                  time.Time
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a deposit (--principal) or installment plan (--monthly --day)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseDecimal("rate", rate)
			if err != nil {
				return err
			}
			sv := domain.Savings{
				Kind:          domain.SavingsDeposit,
				Bank:          bank,
				Name:          name,
				Rate:          r,
				StartDate:     start,
				EndDate:       end,
				PaymentDay:    day,
				LinkedAccount: account,
			}
			if installment {
				sv.Kind = domain.SavingsInstallment
			}
			for _, f := range []struct {
				raw string
				dst *int64
			}{{principal, &sv.Principal}, {monthly, &sv.MonthlyAmount}, {initial, &sv.InitialBalance}} {
				if f.raw == "" {
					continue
				}
				if *f.dst, err = parseAmount(f.raw); err != nil {
					return err
				}
			}

			added, err := app.Store.AddSavings(cmd.Context(), sv)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added savings %s %s\n", formatter.TruncID(added.ID), added.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "Bank")
	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&rate, "rate", "", "Annual interest rate in percent (e.g. 3.5)")
	cmd.Flags().Var(newDateValue(&start), "start", "Start date (YYYY-MM-DD)")
	cmd.Flags().Var(newDateValue(&end), "end", "Maturity date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&installment, "installment", false, "Monthly installment plan instead of a deposit")
	cmd.Flags().StringVar(&principal, "principal", "", "Deposit principal")
	cmd.Flags().StringVar(&monthly, "monthly", "", "Installment amount per month")
	cmd.Flags().IntVar(&day, "day", 0, "Installment payment day (1-31)")
	cmd.Flags().StringVar(&initial, "initial", "", "Amount already paid in before tracking")
	cmd.Flags().StringVar(&account, "account", "", "Account that receives the payments (created if missing)")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newSavingsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List savings with progress and projected payout",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Store.Snapshot()
			if len(st.Savings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No savings found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSavings(st.Savings, st.Budgets, app.today()))
			return nil
		},
	}
}

func newSavingsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a savings product (generated payments stay)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(app.Store.Snapshot().Savings, func(s domain.Savings) string { return s.ID }, args[0], "savings")
			if err != nil {
				return err
			}
			ok, err := app.Store.DeleteSavings(cmd.Context(), id)
			if err := notFound(ok, err, "savings", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted savings %s\n", formatter.TruncID(id))
			return nil
		},
	}
}

func newSavingsSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Record installment payments that came due",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store.Mode() == domain.ModeGroup {
				fmt.Fprintln(cmd.OutOrStdout(), "Installment payments are not generated while in a group.")
				return nil
			}
			n := app.Store.MaterializeSavings()
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d payment(s)\n", n)
			return nil
		},
	}
}
