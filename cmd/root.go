package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "parkyoga",
		Short:         "Park Yoga: browse and book outdoor yoga courses",
		Long:          "parkyoga signs you in to the Park Yoga booking service, lists and books courses, manages your bookings, and recommends courses near you from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp(rootCmd)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		app.session.Restore(cmd.Context())
		return nil
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newProfileCmd(app),
		newCourseCmd(app),
		newBookingCmd(app),
		newRecommendCmd(app),
		newNotificationsCmd(app),
	)

	return rootCmd
}
