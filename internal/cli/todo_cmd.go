package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTodoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
	}

	cmd.AddCommand(
		newTodoAddCmd(app),
		newTodoListCmd(app),
		newTodoEditCmd(app),
		newTodoDoneCmd(app),
		newTodoRemoveCmd(app),
	)

	return cmd
}

// scheduleFlags collects the mutually exclusive schedule options.
type scheduleFlags struct {
	weekday  time.Weekday
	weekly   weekdayValue
	monthly  int
	deadline time.Time
	on       time.Time
	from, to time.Time
}

func (f *scheduleFlags) register(fs *pflag.FlagSet) {
	f.weekly.d = &f.weekday
	fs.Var(&f.weekly, "weekly", "Repeat every week on this weekday (MON..SUN)")
	fs.IntVar(&f.monthly, "monthly", 0, "Repeat every month on this day (1-31)")
	fs.Var(newDateValue(&f.deadline), "deadline", "Show every day until this date (YYYY-MM-DD)")
	fs.Var(newDateValue(&f.on), "on", "Show on this date only (YYYY-MM-DD)")
	fs.Var(newDateValue(&f.from), "from", "Range start (YYYY-MM-DD), use with --to")
	fs.Var(newDateValue(&f.to), "to", "Range end (YYYY-MM-DD), use with --from")
}

// schedule returns the schedule the flags describe, or nil when none was
// given.
func (f *scheduleFlags) schedule() (domain.Schedule, error) {
	var out []domain.Schedule
	if f.weekly.set {
		out = append(out, domain.Weekly{Weekday: f.weekday})
	}
	if f.monthly != 0 {
		out = append(out, domain.MonthlyDay{Day: f.monthly})
	}
	if !f.deadline.IsZero() {
		out = append(out, domain.Deadline{Date: f.deadline})
	}
	if !f.on.IsZero() {
		out = append(out, domain.OnDate{Date: f.on})
	}
	if !f.from.IsZero() || !f.to.IsZero() {
		if f.from.IsZero() || f.to.IsZero() {
			return nil, errors.New("--from and --to must be given together")
		}
		out = append(out, domain.DateRange{Start: f.from, End: f.to})
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], nil
	default:
		return nil, errors.New("give only one of --weekly, --monthly, --deadline, --on or --from/--to")
	}
}

func newTodoAddCmd(app *App) *cobra.Command {
	var sf scheduleFlags

	cmd := &cobra.Command{
		Use:   "add [TITLE]",
		Short: "Add a todo (defaults to today only)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := sf.schedule()
			if err != nil {
				return err
			}

			var title string
			if len(args) == 1 {
				title = args[0]
			}
			if title == "" && app.interactive() {
				title, sched, err = runTodoForm(app.today())
				if err != nil {
					return err
				}
			}
			if sched == nil {
				sched = domain.OnDate{Date: domain.DateOf(app.today())}
			}

			t, err := app.Store.AddTodo(cmd.Context(), domain.Todo{Title: title, Schedule: sched})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added todo %s %s\n", formatter.TruncID(t.ID), t.Title)
			return nil
		},
	}

	sf.register(cmd.Flags())
	return cmd
}

func newTodoListCmd(app *App) *cobra.Command {
	var on time.Time
	var today bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Store.Snapshot()
			todos := st.Todos
			if today && on.IsZero() {
				on = domain.DateOf(app.today())
			}
			if !on.IsZero() {
				todos = app.Store.TodosOn(on)
			}

			out := cmd.OutOrStdout()
			if len(todos) == 0 {
				fmt.Fprintln(out, "No todos found.")
				return nil
			}
			fmt.Fprint(out, formatter.FormatTodoList(todos, st.Group))
			fmt.Fprintln(out, formatter.TodoCounts(todos))
			return nil
		},
	}

	cmd.Flags().Var(newDateValue(&on), "on", "Only todos shown on this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&today, "today", false, "Only todos shown today")
	return cmd
}

func newTodoEditCmd(app *App) *cobra.Command {
	var title string
	var sf scheduleFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a todo's title or schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTodo(app, args[0])
			if err != nil {
				return err
			}
			sched, err := sf.schedule()
			if err != nil {
				return err
			}
			if title == "" && sched == nil {
				return errors.New("nothing to change: give --title or a schedule flag")
			}

			ok, err := app.Store.UpdateTodo(cmd.Context(), id, func(t *domain.Todo) {
				if title != "" {
					t.Title = title
				}
				if sched != nil {
					t.Schedule = sched
				}
			})
			if err := notFound(ok, err, "todo", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated todo %s\n", formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	sf.register(cmd.Flags())
	return cmd
}

func newTodoDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a todo's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTodo(app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.Store.ToggleTodo(cmd.Context(), id)
			if err := notFound(ok, err, "todo", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toggled todo %s\n", formatter.TruncID(id))
			return nil
		},
	}
}

func newTodoRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTodo(app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.Store.DeleteTodo(cmd.Context(), id)
			if err := notFound(ok, err, "todo", id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo %s\n", formatter.TruncID(id))
			return nil
		},
	}
}

func resolveTodo(app *App, input string) (string, error) {
	return resolveID(app.Store.Snapshot().Todos, func(t domain.Todo) string { return t.ID }, input, "todo")
}
