package ports

import (
	"context"

	"github.com/quillpress/blog-system/internal/core/domain"
)

type UserService interface {
	List(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	ChangeRole(ctx context.Context, actor domain.Actor, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}
