package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillpress/blog-system/internal/client/apiclient"
)

func (a *app) cmdRegister() *cobra.Command {
	var email, username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a reader account and sign in",
		RunE: a.open(func(cmd *cobra.Command, _ []string) error {
			res, err := a.client.Register(cmd.Context(), email, username, password)
			if err != nil {
				return err
			}
			return a.printAuth(cmd, res)
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) cmdLogin() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				if apiErr, ok := apiclient.AsError(err); ok {
					return errors.New(apiErr.Message)
				}
				return err
			}
			return a.printAuth(cmd, res)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) printAuth(cmd *cobra.Command, res *apiclient.AuthResult) error {
	if a.output == "json" {
		return printJSON(a.stdout(cmd), res)
	}
	fmt.Fprintf(a.stdout(cmd), "Signed in as %s (%s)\n", res.User.Username, res.User.Role)
	if res.Redirect != "" {
		fmt.Fprintf(a.stdout(cmd), "next: %s\n", res.Redirect)
	}
	return nil
}

func (a *app) cmdLogout() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The local session is gone even when the server is unreachable.
			if err := a.client.Logout(cmd.Context()); err != nil {
				a.log.Warn().Err(err).Msg("server logout failed")
			}
			fmt.Fprintln(a.stdout(cmd), "Signed out")
			return nil
		},
	}
}

func (a *app) cmdWhoami() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity as the server sees it",
		RunE: a.open(func(cmd *cobra.Command, _ []string) error {
			u, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.printUser(a.stdout(cmd), u)
		}),
	}
}
