package cmd

import (
	"fmt"

	"github.com/lynnxiaofeng/parkyoga/internal/adapters/render/screen"
	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/spf13/cobra"
)

func newBookingCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "booking",
		Aliases: []string{"bookings"},
		Short:   "Review and manage bookings",
	}

	cmd.AddCommand(
		newBookingListCmd(app),
		newBookingToggleCmd(app),
		newBookingDeleteCmd(app),
	)

	return cmd
}

func newBookingListCmd(app *app) *cobra.Command {
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.session.IsAuthenticated() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Log in to see your bookings.")
			}

			defer app.bookings.Unmount()
			err := withSpinner(cmd, format, "Fetching bookings...", app.bookings.Mount)
			if err != nil {
				return settle(fmt.Errorf("list bookings: %w", err))
			}

			bookings := app.bookings.Items()
			return writeScreen(cmd, format, toBookingViews(bookings), func() (string, error) {
				return screen.Bookings(bookings)
			})
		},
	}

	format.bind(cmd)

	return cmd
}

func newBookingToggleCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <booking-id>",
		Short: "Switch a booking between Confirmed and Pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.session.IsAuthenticated() {
				return fmt.Errorf("toggle booking: %w", domain.ErrNotAuthenticated)
			}
			if err := app.bookings.Refresh(cmd.Context()); err != nil {
				return settle(fmt.Errorf("list bookings: %w", err))
			}

			status, err := app.bookings.ToggleStatus(cmd.Context(), domain.BookingID(args[0]))
			if err != nil {
				return settle(serverError(err, "Failed to update booking"))
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Booking %s is now %s\n", args[0], status)
			return err
		},
	}
}

func newBookingDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <booking-id>",
		Short: "Delete a booking (administrators only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bookings.Delete(cmd.Context(), domain.BookingID(args[0])); err != nil {
				return settle(serverError(err, "Failed to delete booking"))
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Booking %s deleted\n", args[0])
			return err
		},
	}
}
