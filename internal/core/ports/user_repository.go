package ports

import (
	"context"

	"github.com/quillpress/blog-system/internal/core/domain"
)

// UserRepository defines the persistence contract for identities.
// Lookups of absent identities return domain.ErrUserNotFound; unique
// violations on email or username return domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// CascadeDeleter is implemented by user repositories that can remove an
// identity and every article it authored in one transaction.
type CascadeDeleter interface {
	DeleteWithArticles(ctx context.Context, id string) (int64, error)
}
