package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/ports"
	"github.com/quillpress/blog-system/internal/core/token"
	"github.com/quillpress/blog-system/internal/pkg/metrics"
)

// AuthService implements registration, login, logout and credential
// resolution for the access gate.
type AuthService struct {
	users       ports.UserRepository
	codec       *token.Codec
	revocations ports.RevocationStore
	log         zerolog.Logger
}

// NewAuthService wires an AuthService. revocations may be nil, in which case
// logout only clears the client side and no denylist is consulted.
func NewAuthService(users ports.UserRepository, codec *token.Codec, revocations ports.RevocationStore, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, codec: codec, revocations: revocations, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleReader,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return s.issue(created)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.issue(user)
}

// Logout revokes the credential when a revocation store is configured.
// Invalid or absent credentials are not an error: there is nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if s.revocations == nil || rawToken == "" {
		return nil
	}
	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID()).Msg("credential revoked")
	return nil
}

// Authenticate resolves a raw credential to the identity as currently
// persisted. The role embedded in the credential is ignored.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	if rawToken == "" {
		metrics.GateRejectionsTotal.WithLabelValues("missing").Inc()
		return nil, domain.ErrCredentialMissing
	}

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		metrics.GateRejectionsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrCredentialInvalid
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			metrics.GateRejectionsTotal.WithLabelValues("revoked").Inc()
			return nil, domain.ErrCredentialInvalid
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.GateRejectionsTotal.WithLabelValues("identity_not_found").Inc()
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return user, nil
}

// SeedAdmin creates an admin identity unless one with the email exists.
func (s *AuthService) SeedAdmin(ctx context.Context, email, username, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("admin seeded")
	return nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	raw, claims, err := s.codec.Issue(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: raw, ExpiresAt: claims.Expiry(), User: user}, nil
}
