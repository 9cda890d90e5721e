package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/quillpress/blog-system/internal/core/domain"
)

// ArticleRepository implements ports.ArticleRepository with gorm. Every read
// preloads the author.
type ArticleRepository struct {
	db *gorm.DB
}

func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	m := articleModel{
		Title:    a.Title,
		Content:  a.Content,
		Image:    a.Image,
		AuthorID: a.AuthorID,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return r.FindByID(ctx, m.ID)
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	var m articleModel
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ArticleRepository) List(ctx context.Context) ([]*domain.Article, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *ArticleRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Article, error) {
	return r.find(r.db.WithContext(ctx).Where("author_id = ?", authorID))
}

func (r *ArticleRepository) find(q *gorm.DB) ([]*domain.Article, error) {
	var models []articleModel
	if err := q.Preload("Author").Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	articles := make([]*domain.Article, 0, len(models))
	for i := range models {
		articles = append(articles, models[i].toDomain())
	}
	return articles, nil
}

// Update applies the non-nil fields of patch and returns the updated article.
func (r *ArticleRepository) Update(ctx context.Context, id string, patch domain.ArticlePatch) (*domain.Article, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Content != nil {
		changes["content"] = *patch.Content
	}
	if patch.Image != nil {
		changes["image"] = *patch.Image
	}
	if len(changes) > 0 {
		if err := r.db.WithContext(ctx).Model(&articleModel{ID: id}).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("update article: %w", err)
		}
	}
	return r.FindByID(ctx, id)
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&articleModel{})
	if res.Error != nil {
		return fmt.Errorf("delete article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&articleModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete articles by author: %w", res.Error)
	}
	return res.RowsAffected, nil
}
