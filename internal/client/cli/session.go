package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillpress/blog-system/internal/client/session"
)

func (a *app) cmdSession() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the stored session",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the locally stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sess, err := a.sessions.Load()
				if err != nil {
					return err
				}
				a.printSession(cmd, sess)
				return nil
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Follow sign-in and sign-out from other blogctl processes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				cancel := a.sessions.Subscribe(func(sess *session.Session) {
					a.printSession(cmd, sess)
				})
				defer cancel()

				if err := a.sessions.Watch(ctx); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout(cmd), "watching %s\n", a.sessions.Path())
				<-ctx.Done()
				return nil
			},
		},
	)
	return cmd
}

func (a *app) printSession(cmd *cobra.Command, sess *session.Session) {
	w := a.stdout(cmd)
	if sess == nil {
		fmt.Fprintln(w, "signed out")
		return
	}
	state := "valid"
	if sess.Expired(time.Now()) {
		state = "expired"
	}
	fmt.Fprintf(w, "user=%s role=%s expires=%s (%s)\n",
		sess.UserID, sess.Role, sess.ExpiresAt.Format(time.RFC3339), state)
}
