package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/token"
)

// Context keys set by Authenticate and PageGate.
const (
	UserKey = "user"
	RoleKey = "role"
)

// Authenticator resolves a raw credential to the identity as currently
// persisted.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
}

// Authenticate extracts the credential from the Authorization header or the
// token cookie, verifies it and loads the fresh identity into the context.
// Every credential failure is rendered as 401 Unauthorized.
func Authenticate(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authn.Authenticate(c.Request().Context(), token.FromRequest(c.Request()))
			if err != nil {
				if IsCredentialFailure(err) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized").SetInternal(err)
				}
				return err
			}

			setUser(c, user)
			return next(c)
		}
	}
}

// IsCredentialFailure reports whether err means the caller is not
// authenticated, as opposed to an upstream failure.
func IsCredentialFailure(err error) bool {
	return errors.Is(err, domain.ErrCredentialMissing) ||
		errors.Is(err, domain.ErrCredentialInvalid) ||
		errors.Is(err, domain.ErrIdentityNotFound)
}

func setUser(c echo.Context, user *domain.User) {
	c.Set(UserKey, user)
	c.Set(RoleKey, string(user.Role))
}
