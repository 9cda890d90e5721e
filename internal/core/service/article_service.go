package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
	"github.com/quillpress/blog-system/internal/core/ports"
	"github.com/quillpress/blog-system/internal/pkg/metrics"
)

// ArticleService implements article reads and owner-scoped mutations.
type ArticleService struct {
	articles ports.ArticleRepository
	images   ports.ImageStore
	cleaner  ports.ImageCleaner
	log      zerolog.Logger
}

func NewArticleService(articles ports.ArticleRepository, images ports.ImageStore, cleaner ports.ImageCleaner, log zerolog.Logger) *ArticleService {
	return &ArticleService{articles: articles, images: images, cleaner: cleaner, log: log}
}

func (s *ArticleService) List(ctx context.Context) ([]*domain.Article, error) {
	return s.articles.List(ctx)
}

func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	return s.articles.FindByID(ctx, id)
}

func (s *ArticleService) ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Article, error) {
	if err := authorize(s.log, policy.ListOwnArticles, actor, policy.Target{}); err != nil {
		return nil, err
	}
	return s.articles.ListByAuthor(ctx, actor.ID)
}

func (s *ArticleService) Create(ctx context.Context, actor domain.Actor, in ports.CreateArticleInput) (*domain.Article, error) {
	if err := authorize(s.log, policy.CreateArticle, actor, policy.Target{}); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrInvalidInput)
	}

	var image string
	if in.Image != nil {
		ref, err := s.images.Save(ctx, in.Image.Filename, in.Image.Body)
		if err != nil {
			return nil, err
		}
		image = ref
	}

	now := time.Now().UTC()
	created, err := s.articles.Create(ctx, &domain.Article{
		Title:     title,
		Content:   content,
		Image:     image,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.discard("", image)
		return nil, err
	}

	metrics.ArticlesCreatedTotal.WithLabelValues(strconv.FormatBool(image != "")).Inc()
	s.log.Info().Str("article_id", created.ID).Str("author_id", actor.ID).Msg("article created")
	return created, nil
}

// Update applies a partial change. The article is looked up before the
// policy runs, so a missing article is reported as such to every caller.
func (s *ArticleService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdateArticleInput) (*domain.Article, error) {
	existing, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.log, policy.UpdateArticle, actor, policy.Target{OwnerID: existing.AuthorID}); err != nil {
		return nil, err
	}

	var patch domain.ArticlePatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		patch.Title = &title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", domain.ErrInvalidInput)
		}
		patch.Content = &content
	}
	if in.Image != nil {
		ref, err := s.images.Save(ctx, in.Image.Filename, in.Image.Body)
		if err != nil {
			return nil, err
		}
		patch.Image = &ref
	}
	if patch.Empty() {
		return existing, nil
	}

	updated, err := s.articles.Update(ctx, id, patch)
	if err != nil {
		if patch.Image != nil {
			s.discard(id, *patch.Image)
		}
		return nil, err
	}
	if patch.Image != nil {
		s.discard(id, existing.Image)
	}
	return updated, nil
}

func (s *ArticleService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	existing, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(s.log, policy.DeleteArticle, actor, policy.Target{OwnerID: existing.AuthorID}); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	s.discard(id, existing.Image)
	s.log.Info().Str("article_id", id).Str("actor_id", actor.ID).Msg("article deleted")
	return nil
}

func (s *ArticleService) discard(articleID, image string) {
	if image == "" || s.cleaner == nil {
		return
	}
	s.cleaner.Enqueue(ports.CleanupJob{ArticleID: articleID, Image: image})
}
