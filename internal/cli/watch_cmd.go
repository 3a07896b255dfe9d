package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// liveAnnotation marks commands that render sync progress themselves and
// skip the pre-run wait for group data.
const liveAnnotation = "hearth/live"

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "watch",
		Short:       "Live dashboard of today's todos, the month and balances",
		Annotations: map[string]string{liveAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("watch needs an interactive terminal")
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			p := tea.NewProgram(newWatchModel(ctx, app),
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
}
