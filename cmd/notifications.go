package cmd

import (
	"fmt"

	"github.com/lynnxiaofeng/parkyoga/internal/adapters/render/screen"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Review booking notifications",
	}

	cmd.AddCommand(newNotificationsListCmd(app), newNotificationsClearCmd(app))

	return cmd
}

func newNotificationsListCmd(app *app) *cobra.Command {
	var dueOnly bool
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled and delivered notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				notifications []domain.Notification
				err           error
			)
			if dueOnly {
				notifications, err = app.notifier.Due(cmd.Context())
			} else {
				notifications, err = app.notifier.All(cmd.Context())
			}
			if err != nil {
				return err
			}

			now := app.now()
			return writeScreen(cmd, format, toNotificationViews(notifications, now), func() (string, error) {
				return screen.Notifications(notifications, now)
			})
		},
	}

	cmd.Flags().BoolVar(&dueOnly, "due", false, "Only show notifications whose time has come")
	format.bind(cmd)

	return cmd
}

func newNotificationsClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.notifier.Clear(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Notifications cleared")
			return err
		},
	}
}
