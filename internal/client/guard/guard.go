// Package guard is the client-side route guard. It only decides what the
// client shows; the server enforces the same policy on every request.
package guard

import (
	"time"

	"github.com/quillpress/blog-system/internal/client/session"
	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
)

const (
	LoginPath = "/login"
	HomePath  = "/"

	LoginMessage        = "Please log in to continue"
	NoPermissionMessage = "You do not have permission to access this page"
)

// Loader reads the stored session; session.Store satisfies it.
type Loader interface {
	Load() (*session.Session, error)
}

// Outcome is the result of a mount check. Redirect and Message are empty
// when Allowed.
type Outcome struct {
	Allowed  bool
	Redirect string
	Message  string
}

type Guard struct {
	AllowedRoles []domain.Role
	now          func() time.Time
}

// For builds the guard for a view driven by action.
func For(action policy.Action) Guard {
	return Guard{AllowedRoles: policy.RolesFor(action)}
}

// Check re-reads the session on every call. A missing, unreadable or
// expired credential sends the user to login.
func (g Guard) Check(store Loader) Outcome {
	now := time.Now
	if g.now != nil {
		now = g.now
	}

	sess, err := store.Load()
	if err != nil || sess == nil || sess.Expired(now()) {
		return Outcome{Redirect: LoginPath, Message: LoginMessage}
	}
	for _, r := range g.AllowedRoles {
		if r == sess.Role {
			return Outcome{Allowed: true}
		}
	}
	return Outcome{Redirect: HomePath, Message: NoPermissionMessage}
}
