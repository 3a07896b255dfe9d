package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/hearth/internal/analytics"
	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/spf13/cobra"
)

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"ledger"},
		Short:   "Record income and expenses",
	}

	cmd.AddCommand(
		newBudgetAddCmd(app),
		newBudgetListCmd(app),
		newBudgetEditCmd(app),
		newBudgetRemoveCmd(app),
	)

	return cmd
}

// parseAmount reads a whole-won amount. Thousands separators and a leading
// currency sign are accepted.
func parseAmount(s string) (int64, error) {
	clean := strings.NewReplacer(",", "", "₩", "", "_", "").Replace(strings.TrimSpace(s))
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

func newBudgetAddCmd(app *App) *cobra.Command {
	var (
		income                  bool
		on                      time.Time
		category, account, memo string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE AMOUNT",
		Short: "Add a ledger entry (expense unless --income; use -- before negative amounts)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if on.IsZero() {
				on = app.today()
			}
			typ := domain.EntryExpense
			if income {
				typ = domain.EntryIncome
			}

			e := domain.NewBudgetEntry(args[0], amount, typ, on)
			e.Category = category
			e.Account = account
			e.Memo = memo

			added, err := app.Store.AddBudget(cmd.Context(), e)
			if err != nil {
				return err
			}
			signed := added.Signed()
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s\n",
				formatter.TruncID(added.ID), added.Title,
				formatter.AmountStyle(signed).Render(analytics.Signed(signed)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&income, "income", false, "Record as income")
	cmd.Flags().Var(newDateValue(&on), "date", "Entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&account, "account", "", "Account (default "+domain.DefaultAccount+")")
	cmd.Flags().StringVar(&memo, "memo", "", "Free-form note")
	return cmd
}

func newBudgetListCmd(app *App) *cobra.Command {
	var month, account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == "" {
				month = domain.MonthKey(app.today())
			}
			st := app.Store.Snapshot()
			var entries []domain.BudgetEntry
			for _, e := range st.Budgets {
				if domain.MonthKey(e.Date) != month {
					continue
				}
				if account != "" && e.Account != account {
					continue
				}
				entries = append(entries, e)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No entries in %s.\n", month)
				return nil
			}
			fmt.Fprintln(out, formatter.Header(month))
			fmt.Fprint(out, formatter.FormatLedger(entries, st.Group))
			return nil
		},
	}

	cmd.Flags().Var(newMonthValue(&month), "month", "Month to list (YYYY-MM, default this month)")
	cmd.Flags().StringVar(&account, "account", "", "Only entries of this account")
	return cmd
}

func newBudgetEditCmd(app *App) *cobra.Command {
	var (
		title, amount, category, account, memo string
		on                                     time.Time
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveBudget(app, args[0])
			if err != nil {
				return err
			}
			var signed *int64
			if amount != "" {
				n, err := parseAmount(amount)
				if err != nil {
					return err
				}
				signed = &n
			}

			flags := cmd.Flags()
			ok, err := app.Store.UpdateBudget(cmd.Context(), id, func(e *domain.BudgetEntry) {
				if title != "" {
					e.Title = title
				}
				if signed != nil {
					// A bare magnitude keeps the entry's direction.
					if *signed < 0 {
						e.FromSigned(*signed)
					} else {
						e.Amount = *signed
					}
				}
				if flags.Changed("category") {
					e.Category = category
				}
				if flags.Changed("account") {
					e.Account = account
				}
				if flags.Changed("memo") {
					e.Memo = memo
				}
				if !on.IsZero() {
					e.Date = on
				}
			})
			if err := notFound(ok, err, "entry", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %s\n", formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&amount, "amount", "", "New amount (negative makes it an expense)")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&account, "account", "", "New account")
	cmd.Flags().StringVar(&memo, "memo", "", "New memo")
	cmd.Flags().Var(newDateValue(&on), "date", "New date (YYYY-MM-DD)")
	return cmd
}

func newBudgetRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a ledger entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveBudget(app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.Store.DeleteBudget(cmd.Context(), id)
			if err := notFound(ok, err, "entry", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", formatter.TruncID(id))
			return nil
		},
	}
}

func resolveBudget(app *App, input string) (string, error) {
	return resolveID(app.Store.Snapshot().Budgets, func(e domain.BudgetEntry) string { return e.ID }, input, "entry")
}
