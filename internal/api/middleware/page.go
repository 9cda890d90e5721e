package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	casbinmw "github.com/labstack/echo-contrib/casbin"
	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
	"github.com/quillpress/blog-system/internal/core/token"
	"github.com/quillpress/blog-system/internal/pkg/metrics"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// PageRule binds a path prefix to the policy action a visitor must be able to
// perform to open pages under it. Longer prefixes narrow shorter ones.
type PageRule struct {
	Prefix string
	Action policy.Action
}

// DashboardRules is the route-prefix policy for the dashboard pages.
var DashboardRules = []PageRule{
	{Prefix: "/dashboard", Action: policy.ListOwnArticles},
	{Prefix: "/dashboard/manage-users", Action: policy.ListUsers},
}

const pageModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj, eft

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj)
`

var errNoIdentity = errors.New("page gate: no identity in context")

// NewPageEnforcer builds a casbin enforcer whose policy lines are derived
// from the permission policy: for each rule and role, an allow line when
// the role can perform the rule's action and a deny line otherwise.
func NewPageEnforcer(rules []PageRule) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(pageModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	var lines [][]string
	for _, rule := range rules {
		for _, role := range domain.Roles {
			eft := "deny"
			if policy.Permits(rule.Action, role) {
				eft = "allow"
			}
			lines = append(lines, []string{string(role), strings.TrimSuffix(rule.Prefix, "/") + "*", eft})
		}
	}
	if _, err := e.AddPolicies(lines); err != nil {
		return nil, err
	}
	return e, nil
}

// PageGate guards browser navigation. Without a valid credential the visitor
// is redirected to the login page; with one whose fresh role is not allowed
// under the requested prefix, to the home page.
func PageGate(authn Authenticator, enforcer *casbin.Enforcer) echo.MiddlewareFunc {
	roleCheck := casbinmw.MiddlewareWithConfig(casbinmw.Config{
		Enforcer: enforcer,
		UserGetter: func(c echo.Context) (string, error) {
			user, ok := c.Get(UserKey).(*domain.User)
			if !ok {
				return "", errNoIdentity
			}
			return string(user.Role), nil
		},
		EnforceHandler: func(c echo.Context, role string) (bool, error) {
			ok, err := enforcer.Enforce(role, c.Request().URL.Path)
			if err == nil {
				metrics.ObserveDecision("page", c.Path(), ok, "")
			}
			return ok, err
		},
		ErrorHandler: func(c echo.Context, internal error, status int) error {
			if status == http.StatusInternalServerError {
				return internal
			}
			return c.Redirect(http.StatusFound, HomePath)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		gated := roleCheck(next)
		return func(c echo.Context) error {
			user, err := authn.Authenticate(c.Request().Context(), token.FromRequest(c.Request()))
			if err != nil {
				if IsCredentialFailure(err) {
					return c.Redirect(http.StatusFound, LoginPath)
				}
				return err
			}
			setUser(c, user)
			return gated(c)
		}
	}
}
