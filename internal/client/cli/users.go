package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
)

func (a *app) cmdUsers() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage accounts (admin)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all accounts",
			Args:  cobra.NoArgs,
			RunE: a.guarded(policy.ListUsers, func(cmd *cobra.Command, _ []string) error {
				users, err := a.client.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				return a.printUsers(a.stdout(cmd), users)
			}),
		},
		&cobra.Command{
			Use:   "set-role <id> <admin|writer|reader>",
			Short: "Change an account's role",
			Args:  cobra.ExactArgs(2),
			RunE: a.guarded(policy.ChangeUserRole, func(cmd *cobra.Command, args []string) error {
				u, err := a.client.SetRole(cmd.Context(), args[0], domain.Role(args[1]))
				if err != nil {
					return err
				}
				return a.printUser(a.stdout(cmd), u)
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an account and its articles",
			Args:  cobra.ExactArgs(1),
			RunE: a.guarded(policy.DeleteUser, func(cmd *cobra.Command, args []string) error {
				if err := a.client.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout(cmd), "Deleted user %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}
