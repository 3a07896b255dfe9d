package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/hearth/internal/binding"
	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(
		newAccountAddCmd(app),
		newAccountListCmd(app),
		newAccountSetCmd(app),
		newAccountRemoveCmd(app),
	)

	return cmd
}

func newAccountAddCmd(app *App) *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bal int64
			if initial != "" {
				var err error
				if bal, err = parseAmount(initial); err != nil {
					return err
				}
			}
			a := domain.Account{Name: args[0], InitialBalance: bal}
			if err := app.Store.AddAccount(cmd.Context(), a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s\n", a.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "", "Opening balance")
	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := binding.AccountsView(app.Store).Value()
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAccounts(v, app.Store.Snapshot().Group))
			return nil
		},
	}
}

func newAccountSetCmd(app *App) *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "set NAME",
		Short: "Change an account's opening balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := parseAmount(initial)
			if err != nil {
				return err
			}
			name := args[0]
			if err := requireOwnAccount(app, name); err != nil {
				return err
			}
			ok, err := app.Store.UpdateAccount(cmd.Context(), name, func(a *domain.Account) {
				a.InitialBalance = bal
			})
			if err := notFound(ok, err, "account", name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated account %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "", "Opening balance")
	_ = cmd.MarkFlagRequired("initial")
	return cmd
}

func newAccountRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Delete an account (entries keep their account tag)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := requireOwnAccount(app, name); err != nil {
				return err
			}
			ok, err := app.Store.DeleteAccount(cmd.Context(), name)
			if err := notFound(ok, err, "account", name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", name)
			return nil
		},
	}
}

var errNotYourAccount = errors.New("account belongs to another group member")

// requireOwnAccount refuses edits to accounts another member owns.
func requireOwnAccount(app *App, name string) error {
	v := binding.AccountsView(app.Store).Value()
	for _, a := range v.Accounts {
		if a.Name == name && !v.Mine(name) {
			return fmt.Errorf("%s: %w", name, errNotYourAccount)
		}
	}
	return nil
}
