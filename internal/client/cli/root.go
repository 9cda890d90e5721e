// Package cli implements blogctl, the terminal client of the blog API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quillpress/blog-system/internal/client/apiclient"
	"github.com/quillpress/blog-system/internal/client/guard"
	"github.com/quillpress/blog-system/internal/client/session"
	"github.com/quillpress/blog-system/internal/core/policy"
	"github.com/quillpress/blog-system/internal/pkg/config"
	"github.com/quillpress/blog-system/pkg/logger"
)

// app is the state shared by all commands of one invocation.
type app struct {
	cfgPath     string
	apiURL      string
	sessionFile string
	output      string

	log      zerolog.Logger
	sessions *session.Store
	client   *apiclient.Client
}

// Execute runs blogctl with os.Args. ctx ends long-running commands such as
// session watch.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return err
	}
	return nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Command-line client for the Quillpress blog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (default ~/.blogctl/config.yaml)")
	flags.StringVar(&a.apiURL, "api-url", "", "blog API base URL (overrides config)")
	flags.StringVar(&a.sessionFile, "session-file", "", "session file (overrides config)")
	flags.StringVarP(&a.output, "output", "o", "table", "output format: table|json")

	root.AddCommand(
		a.cmdRegister(),
		a.cmdLogin(),
		a.cmdLogout(),
		a.cmdWhoami(),
		a.cmdArticles(),
		a.cmdUsers(),
		a.cmdSession(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.sessionFile != "" {
		cfg.SessionFile = a.sessionFile
	}

	a.log = logger.Init(logger.Options{Level: "warn", Pretty: true, Service: "blogctl", Output: os.Stderr})
	a.sessions, err = session.NewStore(cfg.SessionFile, cfg.APIURL, a.log)
	if err != nil {
		return err
	}
	a.client = apiclient.New(cfg.APIURL, a.sessions)
	return nil
}

// RedirectError is an authorization outcome the user has to act on.
type RedirectError struct {
	Message  string
	Redirect string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s (redirect: %s, %s)", e.Message, e.Redirect, hint(e.Redirect))
}

func hint(redirect string) string {
	if redirect == guard.LoginPath {
		return "run `blogctl login`"
	}
	return "run `blogctl articles list`"
}

type runFunc func(cmd *cobra.Command, args []string) error

// guarded checks the stored role against the view's allow-list before the
// command runs, then maps API authorization failures to redirects.
func (a *app) guarded(action policy.Action, run runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		if out := guard.For(action).Check(a.sessions); !out.Allowed {
			return &RedirectError{Message: out.Message, Redirect: out.Redirect}
		}
		return a.open(run)(cmd, args)
	}
}

// open runs commands that need no role but still surface 401/403 as redirects.
func (a *app) open(run runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if apiErr, ok := apiclient.AsError(err); ok && apiErr.Redirect() != "" {
			return &RedirectError{Message: apiErr.Message, Redirect: apiErr.Redirect()}
		}
		return err
	}
}

// IsRedirect reports whether err asks the user to go elsewhere.
func IsRedirect(err error) (*RedirectError, bool) {
	var r *RedirectError
	ok := errors.As(err, &r)
	return r, ok
}

func (a *app) stdout(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
