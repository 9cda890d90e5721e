package ports

import (
	"context"

	"github.com/quillpress/blog-system/internal/core/domain"
)

// ArticleRepository defines the persistence contract for articles.
// Every read eager-loads the author summary. Lists are ordered newest first.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) (*domain.Article, error)
	FindByID(ctx context.Context, id string) (*domain.Article, error)
	List(ctx context.Context) ([]*domain.Article, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Article, error)
	Update(ctx context.Context, id string, patch domain.ArticlePatch) (*domain.Article, error)
	Delete(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}
