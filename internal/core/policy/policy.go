// Package policy is the single permission policy shared by the route
// middleware, the services, the page gate and the command-line route guard.
//
// CanPerform is pure: it never touches persistence, and the same inputs always
// produce the same decision.
package policy

import (
	"github.com/quillpress/blog-system/internal/core/domain"
)

// Action names an operation subject to authorization.
type Action string

const (
	ViewArticle     Action = "viewArticle"
	ListArticles    Action = "listArticles"
	CreateArticle   Action = "createArticle"
	ListOwnArticles Action = "listOwnArticles"
	UpdateArticle   Action = "updateArticle"
	DeleteArticle   Action = "deleteArticle"
	ListUsers       Action = "listUsers"
	ChangeUserRole  Action = "changeUserRole"
	DeleteUser      Action = "deleteUser"
)

// Actions lists every known action.
var Actions = []Action{
	ViewArticle, ListArticles, CreateArticle, ListOwnArticles,
	UpdateArticle, DeleteArticle, ListUsers, ChangeUserRole, DeleteUser,
}

// Target describes the resource an action applies to. OwnerID is the article
// author or, for user management, the id of the identity being managed.
// RequestedRole is only meaningful for ChangeUserRole.
type Target struct {
	OwnerID       string
	RequestedRole domain.Role
}

// Decision is the outcome of a policy evaluation. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  domain.Reason
}

func allow() Decision                    { return Decision{Allowed: true} }
func deny(reason domain.Reason) Decision { return Decision{Reason: reason} }

// CanPerform evaluates the rules in priority order; the first match wins.
func CanPerform(action Action, actor domain.Actor, target Target) Decision {
	if action == ViewArticle || action == ListArticles {
		return allow()
	}
	if !actor.Authenticated() {
		return deny(domain.ReasonUnauthenticated)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return adminDecision(action, actor, target)
	case domain.RoleWriter:
		switch action {
		case CreateArticle, ListOwnArticles:
			return allow()
		case UpdateArticle, DeleteArticle:
			if target.OwnerID != "" && actor.ID == target.OwnerID {
				return allow()
			}
			return deny(domain.ReasonForbiddenOwnership)
		}
	}

	return deny(domain.ReasonForbiddenRole)
}

func adminDecision(action Action, actor domain.Actor, target Target) Decision {
	self := target.OwnerID != "" && target.OwnerID == actor.ID
	switch action {
	case ChangeUserRole:
		if self && target.RequestedRole != domain.RoleAdmin {
			return deny(domain.ReasonForbiddenSelf)
		}
	case DeleteUser:
		if self {
			return deny(domain.ReasonForbiddenSelf)
		}
	}
	return allow()
}

// Authorize is CanPerform returning a *domain.PermissionError on deny.
func Authorize(action Action, actor domain.Actor, target Target) error {
	d := CanPerform(action, actor, target)
	if d.Allowed {
		return nil
	}
	return &domain.PermissionError{Action: string(action), Reason: d.Reason}
}

// RolesFor returns the roles that are allowed the action for at least one
// target. Ownership and self-action rules narrow this per target.
func RolesFor(action Action) []domain.Role {
	var roles []domain.Role
	for _, role := range domain.Roles {
		probe := domain.Actor{ID: "probe", Role: role}
		owned := Target{OwnerID: probe.ID, RequestedRole: role}
		foreign := Target{OwnerID: "other", RequestedRole: role}
		if CanPerform(action, probe, owned).Allowed || CanPerform(action, probe, foreign).Allowed {
			roles = append(roles, role)
		}
	}
	return roles
}

// Permits reports whether role appears in RolesFor(action).
func Permits(action Action, role domain.Role) bool {
	for _, r := range RolesFor(action) {
		if r == role {
			return true
		}
	}
	return false
}
