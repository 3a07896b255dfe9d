package cli

import (
	"fmt"

	"github.com/alexanderramin/hearth/internal/analytics"
	"github.com/alexanderramin/hearth/internal/binding"
	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Month at a glance: income, spending, goal and balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := app.today()
			if month == "" {
				month = domain.MonthKey(today)
			}

			ledger := binding.LedgerView(app.Store).Value()
			sum := analytics.Summarize(month, ledger.Budgets, ledger.Categories)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatMonthSummary(sum))
			fmt.Fprintln(out)

			fmt.Fprintln(out, formatter.Header("Accounts"))
			accounts := binding.AccountsView(app.Store).Value()
			fmt.Fprint(out, formatter.FormatAccounts(accounts, app.Store.Snapshot().Group))

			if month == domain.MonthKey(today) {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "%s  %s\n", formatter.Dim("Today"), formatter.TodoCounts(app.Store.TodosOn(today)))
			}
			return nil
		},
	}

	cmd.Flags().Var(newMonthValue(&month), "month", "Month (YYYY-MM, default this month)")
	return cmd
}
