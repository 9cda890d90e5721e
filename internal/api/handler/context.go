package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/api/middleware"
	"github.com/quillpress/blog-system/internal/core/domain"
)

// currentUser returns the identity loaded by the Authenticate middleware, or
// nil on public routes.
func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	return user
}

// actorFrom returns the verified actor for the request. On public routes it
// is the zero, unauthenticated actor and the policy decides what that means.
func actorFrom(c echo.Context) domain.Actor {
	return domain.ActorOf(currentUser(c))
}
