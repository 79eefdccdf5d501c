package cli

import (
	"github.com/spf13/cobra"
)

func newAuthCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Register, log in and inspect the current account",
	}
	cmd.AddCommand(newAuthRegisterCmd(opts), newAuthLoginCmd(opts), newAuthMeCmd(opts))
	return cmd
}

func newAuthRegisterCmd(opts *options) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.client().Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			opts.success("Registered %s", session.User.Email)
			opts.info("export %s=%s", envToken, session.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func newAuthLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.client().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			opts.success("Logged in as %s", session.User.Email)
			opts.info("export %s=%s", envToken, session.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func newAuthMeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account behind the current token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.client().Me(cmd.Context())
			if err != nil {
				return err
			}
			opts.info("%s <%s>", user.Name, user.Email)
			opts.info("id: %s", user.ID)
			return nil
		},
	}
}
