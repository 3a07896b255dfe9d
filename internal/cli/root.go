// Package cli is hearth's command line: cobra commands over the data store
// and a live dashboard fed by the binding views.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/store"
	"github.com/spf13/cobra"
)

// syncWait bounds how long a command waits for a group's first snapshots.
const syncWait = 3 * time.Second

// App holds what CLI commands act on.
type App struct {
	Store *store.Store

	// IsInteractive reports whether stdin is a terminal. Forms and
	// spinners only run when it returns true.
	IsInteractive func() bool

	// Now is the clock used for defaults like "today". Nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) today() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "hearth" command and registers all
// subcommands against the provided App. Pending saves are flushed after
// every successful command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "hearth",
		Short:         "Household ledger, todos and savings, alone or shared",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.waitSynced(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Store.Flush(cmd.Context())
		},
	}

	root.AddCommand(
		newTodoCmd(app),
		newBudgetCmd(app),
		newAccountCmd(app),
		newCategoryCmd(app),
		newGoalCmd(app),
		newInvestCmd(app),
		newSavingsCmd(app),
		newGroupCmd(app),
		newSummaryCmd(app),
		newWatchCmd(app),
	)

	return root
}

// waitSynced holds a command until group data has arrived. A slow server
// is not fatal: the command runs on whatever is cached.
func (a *App) waitSynced(cmd *cobra.Command) error {
	if cmd.Annotations[liveAnnotation] != "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), syncWait)
	defer cancel()

	stop := formatter.StartSpinner(cmd.ErrOrStderr(), a.interactive() && a.Store.Mode() == domain.ModeGroup, "Syncing group…")
	err := a.Store.WaitSynced(ctx)
	stop()

	if errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim("group data is still loading; showing what is cached"))
		return nil
	}
	return err
}
