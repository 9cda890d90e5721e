package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpress/blog-system/internal/api"
	"github.com/quillpress/blog-system/internal/api/handler"
	"github.com/quillpress/blog-system/internal/client/guard"
	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/service"
	"github.com/quillpress/blog-system/internal/core/token"
	"github.com/quillpress/blog-system/internal/infrastructure/db/sqlstore"
	"github.com/quillpress/blog-system/internal/infrastructure/storage"
)

func newBackend(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	images, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	log := zerolog.Nop()
	auth := service.NewAuthService(store.Users, token.NewCodec("cli-secret", time.Hour), nil, log)
	require.NoError(t, auth.SeedAdmin(ctx, "admin@example.com", "admin", "admin-pass"))

	reg := prometheus.NewRegistry()
	e, err := api.NewRouter(api.Options{
		UploadDir:  images.Dir(),
		Registerer: reg,
		Gatherer:   reg,
		Log:        log,
	}, api.Dependencies{
		Auth:     auth,
		Articles: service.NewArticleService(store.Articles, images, nil, log),
		Users:    service.NewUserService(store.Users, store.Articles, nil, log),
		Checks:   map[string]handler.Check{"database": store.Ping},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL
}

type profile struct {
	t       *testing.T
	apiURL  string
	session string
	config  string
}

func newProfile(t *testing.T, apiURL string) *profile {
	dir := t.TempDir()
	return &profile{
		t:       t,
		apiURL:  apiURL,
		session: filepath.Join(dir, "session.json"),
		config:  filepath.Join(dir, "config.yaml"),
	}
}

func (p *profile) run(args ...string) (string, error) {
	p.t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", p.config, "--api-url", p.apiURL, "--session-file", p.session,
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (p *profile) mustRun(args ...string) string {
	p.t.Helper()
	out, err := p.run(args...)
	require.NoError(p.t, err, out)
	return out
}

func (p *profile) whoami() domain.User {
	p.t.Helper()
	var u domain.User
	require.NoError(p.t, json.Unmarshal([]byte(p.mustRun("-o", "json", "whoami")), &u))
	return u
}

func requireRedirect(t *testing.T, err error, redirect, message string) {
	t.Helper()
	r, ok := IsRedirect(err)
	require.True(t, ok, "expected redirect, got %v", err)
	assert.Equal(t, redirect, r.Redirect)
	if message != "" {
		assert.Equal(t, message, r.Message)
	}
}

func TestCLI_AnonymousIsSentToLogin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := newProfile(t, newBackend(t))

	out := p.mustRun("articles", "list")
	assert.Contains(t, out, "ID")

	_, err := p.run("articles", "mine")
	requireRedirect(t, err, guard.LoginPath, guard.LoginMessage)

	_, err = p.run("whoami")
	requireRedirect(t, err, guard.LoginPath, "")

	assert.Contains(t, p.mustRun("session", "show"), "signed out")
}

func TestCLI_RoleLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	url := newBackend(t)
	author := newProfile(t, url)
	admin := newProfile(t, url)

	out := author.mustRun("register", "--email", "w@example.com", "--username", "wendy", "--password", "secret-pw")
	assert.Contains(t, out, "Signed in as wendy (reader)")

	_, err := author.run("articles", "create", "--title", "Hi", "--content", "body")
	requireRedirect(t, err, guard.HomePath, guard.NoPermissionMessage)

	_, err = author.run("users", "list")
	requireRedirect(t, err, guard.HomePath, guard.NoPermissionMessage)

	me := author.whoami()
	assert.Equal(t, domain.RoleReader, me.Role)

	admin.mustRun("login", "--email", "admin@example.com", "--password", "admin-pass")
	assert.Contains(t, admin.mustRun("users", "list"), "wendy")
	assert.Contains(t, admin.mustRun("users", "set-role", me.ID, "writer"), "role=writer")

	// The server reads the current role; the stored credential still says reader.
	assert.Equal(t, domain.RoleWriter, author.whoami().Role)

	author.mustRun("login", "--email", "w@example.com", "--password", "secret-pw")
	out = author.mustRun("articles", "create", "--title", "First post", "--content", "hello")
	assert.Contains(t, out, "First post")
	assert.Contains(t, author.mustRun("articles", "mine"), "First post")
	assert.Contains(t, author.mustRun("session", "show"), "role=writer")

	_, err = admin.run("users", "delete", admin.whoami().ID)
	require.Error(t, err)
	requireRedirect(t, err, guard.HomePath, "")

	admin.mustRun("users", "delete", me.ID)
	_, err = author.run("articles", "mine")
	requireRedirect(t, err, guard.LoginPath, "")
	assert.NotContains(t, admin.mustRun("articles", "list"), "First post")
}

func TestCLI_LoginFailureAndLogout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := newProfile(t, newBackend(t))

	_, err := p.run("login", "--email", "admin@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	p.mustRun("login", "--email", "admin@example.com", "--password", "admin-pass")
	assert.Contains(t, p.mustRun("session", "show"), "role=admin")

	assert.Contains(t, p.mustRun("logout"), "Signed out")
	assert.Contains(t, p.mustRun("session", "show"), "signed out")
	_, err = p.run("users", "list")
	requireRedirect(t, err, guard.LoginPath, guard.LoginMessage)
}

func TestRootCommand_Defaults(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "blogctl", root.Use)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	out := root.PersistentFlags().Lookup("output")
	require.NotNil(t, out)
	assert.Equal(t, "table", out.DefValue)

	for _, path := range [][]string{
		{"login"}, {"register"}, {"logout"}, {"whoami"},
		{"articles", "list"}, {"articles", "mine"}, {"articles", "create"}, {"articles", "update"},
		{"users", "set-role"}, {"users", "delete"}, {"session", "watch"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
