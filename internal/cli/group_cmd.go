package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/alexanderramin/hearth/internal/binding"
	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/store"
	"github.com/spf13/cobra"
)

func newGroupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Share the ledger, todos and accounts with a group",
	}

	cmd.AddCommand(
		newGroupCreateCmd(app),
		newGroupJoinCmd(app),
		newGroupLeaveCmd(app),
		newGroupStatusCmd(app),
		newGroupProfileCmd(app),
	)

	return cmd
}

// groupError adds a hint to errors a user can act on.
func groupError(err error) error {
	switch {
	case errors.Is(err, store.ErrGroupsDisabled):
		return fmt.Errorf("%w (set HEARTH_REMOTE_URL to a hearth-syncd address)", err)
	case errors.Is(err, store.ErrAlreadyInGroup):
		return fmt.Errorf("%w (run 'hearth group leave' first)", err)
	case errors.Is(err, store.ErrNotInGroup):
		return fmt.Errorf("%w (nothing to leave)", err)
	}
	return err
}

func newGroupCreateCmd(app *App) *cobra.Command {
	var name, as string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group and upload your local data to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := formatter.StartSpinner(cmd.ErrOrStderr(), app.interactive(), "Creating group…")
			grp, err := app.Store.CreateGroup(cmd.Context(), name, as)
			stop()
			if grp.Code == "" {
				return groupError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created group %s\n", formatter.StyleYellow.Render(grp.Code))
			fmt.Fprintln(out, formatter.Dim("Share this code so others can run 'hearth group join "+grp.Code+"'."))
			if err != nil {
				// Membership is saved; sync is retried on the next start.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Group name")
	cmd.Flags().StringVar(&as, "as", "", "Your display name in the group")
	return cmd
}

func newGroupJoinCmd(app *App) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "join CODE",
		Short: "Join a group; local data is replaced by the group's",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := formatter.StartSpinner(cmd.ErrOrStderr(), app.interactive(), "Joining group…")
			grp, err := app.Store.JoinGroup(cmd.Context(), args[0], as)
			stop()
			if grp.Code == "" {
				return groupError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Joined %s (%s)\n", orName(grp.Name), formatter.StyleYellow.Render(grp.Code))
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Your display name in the group")
	return cmd
}

func newGroupLeaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the group, keeping only what you created",
		RunE: func(cmd *cobra.Command, args []string) error {
			code := app.Store.Snapshot().GroupCode
			stop := formatter.StartSpinner(cmd.ErrOrStderr(), app.interactive(), "Leaving group…")
			err := app.Store.DisconnectGroup(cmd.Context())
			stop()
			if err != nil {
				return groupError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Left group %s\n", code)
			return nil
		},
	}
}

func newGroupStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show mode, connection and members",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := binding.GroupView(app.Store).Value()
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatGroupStatus(g, app.Store.Snapshot().Identity))
			return nil
		},
	}
}

func newGroupProfileCmd(app *App) *cobra.Command {
	var as, color string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change your display name and member color",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Store.Snapshot()
			if as == "" {
				as = st.DisplayName
			}
			if color == "" {
				color = st.Group.MemberColors[st.Identity]
			} else if !slices.Contains(domain.MemberPalette, color) {
				return fmt.Errorf("invalid --color %q (choose one of %v)", color, domain.MemberPalette)
			}
			if err := app.Store.UpdateProfile(cmd.Context(), as, color); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s\n", formatter.MemberStyle(color).Render(orName(as)))
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Display name")
	cmd.Flags().StringVar(&color, "color", "", "Member color (hex from the member palette)")
	return cmd
}

func orName(s string) string {
	if s == "" {
		return "(unnamed)"
	}
	return s
}
