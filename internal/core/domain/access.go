package domain

import (
	"errors"
	"fmt"
)

// Gate failures. All three render as 401 Unauthorized.
var (
	ErrCredentialMissing = errors.New("credential missing")
	ErrCredentialInvalid = errors.New("credential invalid")
	ErrIdentityNotFound  = errors.New("identity not found")
)

// ErrInvalidInput marks a request that failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Reason is the machine-readable code carried by a denied permission decision.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonUnauthenticated    Reason = "unauthenticated"
	ReasonForbiddenRole      Reason = "forbidden-role"
	ReasonForbiddenOwnership Reason = "forbidden-ownership"
	ReasonForbiddenSelf      Reason = "forbidden-self-action"
)

// PermissionError is returned when the permission policy denies an action.
type PermissionError struct {
	Action string
	Reason Reason
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied for %s: %s", e.Action, e.Reason)
}

// Actor is the verified caller of an operation. The zero value is an
// unauthenticated visitor.
type Actor struct {
	ID   string
	Role Role
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool { return a.ID != "" && a.Role != "" }

// ActorOf builds the actor for a persisted identity.
func ActorOf(u *User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Role: u.Role}
}
