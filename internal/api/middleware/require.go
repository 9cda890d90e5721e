package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
	"github.com/quillpress/blog-system/internal/pkg/metrics"
)

// Require checks a non-resource-scoped action against the permission policy
// before the handler runs. It must follow Authenticate. Resource-scoped
// actions are checked by the services after the target has been loaded.
func Require(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(UserKey).(*domain.User)
			d := policy.CanPerform(action, domain.ActorOf(user), policy.Target{})
			metrics.ObserveDecision("route", string(action), d.Allowed, string(d.Reason))
			if !d.Allowed {
				return &domain.PermissionError{Action: string(action), Reason: d.Reason}
			}
			return next(c)
		}
	}
}
