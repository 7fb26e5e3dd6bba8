package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/apidrift/internal/errors"
)

func (c *cli) newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to the apidrift backend",
		Long: `The auth command manages your apidrift session. The token returned at
login is stored locally and sent with every request until you log out or
the backend rejects it.`,
		Example: `  # Create an account and sign in
  apidrift auth signup --email dev@example.com

  # Sign in
  apidrift auth login

  # Show who is signed in
  apidrift auth status`,
	}

	cmd.AddCommand(c.newAuthLoginCommand())
	cmd.AddCommand(c.newAuthSignupCommand())
	cmd.AddCommand(c.newAuthLogoutCommand())
	cmd.AddCommand(c.newAuthStatusCommand())

	return cmd
}

func (c *cli) newAuthLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long:  `Sign in with your email and password. Missing values are prompted for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			user, secret, err := c.credentials(email, password)
			if err != nil {
				return err
			}
			if err := a.Session().Login(cmd.Context(), user, secret); err != nil {
				return err
			}
			errors.DisplaySuccess(fmt.Sprintf("Logged in as %s", user))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func (c *cli) newAuthSignupCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			user, secret, err := c.credentials(email, password)
			if err != nil {
				return err
			}
			if err := a.Session().Signup(cmd.Context(), user, secret); err != nil {
				return err
			}
			errors.DisplaySuccess(fmt.Sprintf("Account created, logged in as %s", user))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func (c *cli) newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			if err := a.Session().Logout(); err != nil {
				return err
			}
			errors.DisplaySuccess("Logged out")
			return nil
		},
	}
}

func (c *cli) newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Long: `Shows whether a session token is stored. The token's claims are decoded
for display only; validity is decided by the backend on the next request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application()
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}

			st := a.Session().Status()
			if p.Structured() {
				return p.Encode(st)
			}

			rows := [][2]string{{"Logged in", yesNo(st.Authenticated)}}
			if st.Subject != "" {
				rows = append(rows, [2]string{"User", st.Subject})
			}
			if st.ExpiresAt != nil {
				expiry := st.ExpiresAt.Local().Format("2006-01-02 15:04")
				if st.Expired {
					expiry += " (expired)"
				}
				rows = append(rows, [2]string{"Expires", expiry})
			}
			rows = append(rows, [2]string{"Backend", a.Client().BaseURL()})
			return p.KeyValues("Session", rows)
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
