package cmd

import (
	"fmt"

	"github.com/lynnxiaofeng/parkyoga/internal/adapters/render/screen"
	"github.com/lynnxiaofeng/parkyoga/internal/application"
	"github.com/spf13/cobra"
)

func newRegisterCmd(app *app) *cobra.Command {
	var opts application.RegisterCommand

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirmGiven := opts.ConfirmPassword != ""
			passwordGiven := opts.Password != ""

			p := newPrompter(cmd)
			if err := p.fill(&opts.Username, "Username: ", false); err != nil {
				return err
			}
			if err := p.fill(&opts.Email, "Email: ", false); err != nil {
				return err
			}
			if err := p.fill(&opts.Password, "Password: ", true); err != nil {
				return err
			}
			if passwordGiven && !confirmGiven {
				opts.ConfirmPassword = opts.Password
			}
			if err := p.fill(&opts.ConfirmPassword, "Confirm password: ", true); err != nil {
				return err
			}

			if opts.RequestedAdmin {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Administrator accounts cannot be requested at sign-up; creating a regular account.")
			}

			if err := app.session.Register(cmd.Context(), opts); err != nil {
				return err
			}
			login := application.LoginCommand{Email: opts.Email, Password: opts.Password}
			if err := app.session.Login(cmd.Context(), login); err != nil {
				return fmt.Errorf("account created but sign-in failed: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", displayName(app))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "Username")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&opts.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	cmd.Flags().BoolVar(&opts.RequestedAdmin, "admin", false, "Request an administrator account (always registered as a regular account)")

	return cmd
}

func newLoginCmd(app *app) *cobra.Command {
	var opts application.LoginCommand

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&opts.Email, "Email: ", false); err != nil {
				return err
			}
			if err := p.fill(&opts.Password, "Password: ", true); err != nil {
				return err
			}

			if err := app.session.Login(cmd.Context(), opts); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(app))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Password (prompted when omitted)")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Logout(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func newProfileCmd(app *app) *cobra.Command {
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile := application.ProfileOf(app.session.Snapshot())
			return writeScreen(cmd, format, toProfileView(profile), func() (string, error) {
				return screen.Profile(profile)
			})
		},
	}

	format.bind(cmd)

	return cmd
}

func displayName(app *app) string {
	profile := application.ProfileOf(app.session.Snapshot())
	if profile.IsAdmin {
		return profile.Username + " (admin)"
	}
	return profile.Username
}
