package ports

import (
	"context"
	"io"

	"github.com/quillpress/blog-system/internal/core/domain"
)

// Upload is an image attached to a create or update request.
type Upload struct {
	Filename string
	Body     io.Reader
}

type CreateArticleInput struct {
	Title   string
	Content string
	Image   *Upload
}

// UpdateArticleInput is partial: nil fields are left untouched.
type UpdateArticleInput struct {
	Title   *string
	Content *string
	Image   *Upload
}

type ArticleService interface {
	List(ctx context.Context) ([]*domain.Article, error)
	Get(ctx context.Context, id string) (*domain.Article, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Article, error)
	Create(ctx context.Context, actor domain.Actor, in CreateArticleInput) (*domain.Article, error)
	Update(ctx context.Context, actor domain.Actor, id string, in UpdateArticleInput) (*domain.Article, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

// ImageStore persists uploaded images and returns the public reference
// (e.g. "/uploads/<file>") stored on the article.
type ImageStore interface {
	Save(ctx context.Context, filename string, body io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}

// CleanupJob asks for an orphaned image to be removed.
type CleanupJob struct {
	ArticleID string
	Image     string
}

// ImageCleaner removes orphaned images off the request path.
type ImageCleaner interface {
	Enqueue(job CleanupJob)
}
