package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
	"github.com/quillpress/blog-system/internal/core/ports"
)

// UserService implements admin-only identity management.
type UserService struct {
	users    ports.UserRepository
	articles ports.ArticleRepository
	cleaner  ports.ImageCleaner
	log      zerolog.Logger
}

func NewUserService(users ports.UserRepository, articles ports.ArticleRepository, cleaner ports.ImageCleaner, log zerolog.Logger) *UserService {
	return &UserService{users: users, articles: articles, cleaner: cleaner, log: log}
}

func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if err := authorize(s.log, policy.ListUsers, actor, policy.Target{}); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserService) ChangeRole(ctx context.Context, actor domain.Actor, id string, role domain.Role) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be one of admin, writer, reader", domain.ErrInvalidInput)
	}
	if err := authorize(s.log, policy.ChangeUserRole, actor, policy.Target{OwnerID: target.ID, RequestedRole: role}); err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}

	updated, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("user_id", id).
		Str("from", string(target.Role)).
		Str("to", string(role)).
		Str("actor_id", actor.ID).
		Msg("role changed")
	return updated, nil
}

// Delete removes the identity together with the articles it authored.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(s.log, policy.DeleteUser, actor, policy.Target{OwnerID: target.ID}); err != nil {
		return err
	}

	owned, err := s.articles.ListByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deleteCascade(ctx, id); err != nil {
		return err
	}

	for _, a := range owned {
		if a.Image != "" && s.cleaner != nil {
			s.cleaner.Enqueue(ports.CleanupJob{ArticleID: a.ID, Image: a.Image})
		}
	}
	s.log.Info().Str("user_id", id).Int("articles", len(owned)).Str("actor_id", actor.ID).Msg("user deleted")
	return nil
}

// deleteCascade uses the repository's transaction when it has one. Otherwise
// articles go first: a failure in between leaves an identity without
// articles, never articles without an author.
func (s *UserService) deleteCascade(ctx context.Context, id string) error {
	if tx, ok := s.users.(ports.CascadeDeleter); ok {
		_, err := tx.DeleteWithArticles(ctx, id)
		return err
	}
	if _, err := s.articles.DeleteByAuthor(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}
