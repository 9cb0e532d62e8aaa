package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCmd(app func() *App) *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			var err error
			if username, err = a.ask(username, "Enter username"); err != nil {
				return err
			}
			if email, err = a.ask(email, "Enter email"); err != nil {
				return err
			}
			password, err := a.askPassword("Enter password")
			if err != nil {
				return err
			}

			if err := a.api.Register(cmd.Context(), username, email, password); err != nil {
				return describe(err)
			}
			a.println("User registered successfully")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "user name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email")
	return cmd
}

func newLoginCmd(app func() *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			var err error
			if email, err = a.ask(email, "Enter email"); err != nil {
				return err
			}
			password, err := a.askPassword("Enter password")
			if err != nil {
				return err
			}

			if err := a.api.Login(cmd.Context(), email, password); err != nil {
				return describe(err)
			}
			a.println("Login successful")
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the server and forget it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			err := a.api.Logout(cmd.Context())
			if cerr := a.jar.Clear(cmd.Context()); cerr != nil {
				a.logger.Warn(cmd.Context(), "clear cookie jar", "error", cerr)
			}
			if err != nil {
				return describe(err)
			}
			a.println("Logged out successfully")
			return nil
		},
	}
}

func newForgotPasswordCmd(app func() *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			var err error
			if email, err = a.ask(email, "Enter email"); err != nil {
				return err
			}
			token, err := a.api.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return describe(err)
			}
			a.println("Reset token:", token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email")
	return cmd
}

func newResetPasswordCmd(app func() *App) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			var err error
			if token, err = a.ask(token, "Enter reset token"); err != nil {
				return err
			}
			password, err := a.askPassword("Enter new password")
			if err != nil {
				return err
			}
			if err := a.api.ResetPassword(cmd.Context(), token, password); err != nil {
				return describe(err)
			}
			a.println("Password reset successfully")
			return nil
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "reset token")
	return cmd
}

func newWhoamiCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			u, err := a.api.Me(cmd.Context())
			if err != nil {
				return describe(err)
			}
			a.println(u.UserName, "<"+u.Email+">", u.ID)
			return nil
		},
	}
}
