package cli

import (
	"fmt"

	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/ryanuber/go-glob"
	"github.com/spf13/cobra"
)

func newCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage spending categories",
	}

	cmd.AddCommand(
		newCategoryListCmd(app),
		newCategoryAddCmd(app),
		newCategoryRemoveCmd(app),
		newCategoryFixedCmd(app),
	)

	return cmd
}

func newCategoryListCmd(app *App) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.Store.Snapshot().Categories
			names := c.Categories
			if match != "" {
				names = nil
				for _, n := range c.Categories {
					if glob.Glob(match, n) {
						names = append(names, n)
					}
				}
			}

			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCategories(names, c))
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "Only names matching this glob (e.g. '*비')")
	return cmd
}

func newCategoryAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := app.Store.AddCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Category %s already exists\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", args[0])
			return nil
		},
	}
}

func newCategoryRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Delete a category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := app.Store.DeleteCategory(cmd.Context(), args[0])
			if err := notFound(changed, err, "category", args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
			return nil
		},
	}
}

func newCategoryFixedCmd(app *App) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "fixed NAME",
		Short: "Mark a category as a fixed monthly cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.Store.SetFixedCategory(cmd.Context(), args[0], !off); err != nil {
				return err
			}
			state := "fixed"
			if off {
				state = "variable"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %s is %s\n", args[0], state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Unmark instead")
	return cmd
}

func newGoalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Monthly spending goals",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set MONTH AMOUNT",
			Short: "Set the spending goal for a month (YYYY-MM)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}
				if _, err := app.Store.SetMonthlyGoal(cmd.Context(), args[0], amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Goal for %s set\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear MONTH",
			Short: "Remove a month's goal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				changed, err := app.Store.SetMonthlyGoal(cmd.Context(), args[0], 0)
				if err := notFound(changed, err, "goal", args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Goal for %s cleared\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List monthly goals",
			RunE: func(cmd *cobra.Command, args []string) error {
				goals := app.Store.Snapshot().Categories.MonthlyGoals
				if len(goals) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No goals set.")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoals(goals))
				return nil
			},
		},
	)

	return cmd
}
