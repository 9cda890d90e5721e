package ports

import (
	"context"
	"time"

	"github.com/quillpress/blog-system/internal/core/domain"
)

// RegisterInput is the self-service sign-up payload. The role is never
// caller-chosen.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// AuthResult is delivered to the client after a successful login or
// registration.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
}

// RevocationStore is the opt-in denylist of logged-out credentials, keyed by
// credential id and kept until the credential would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
