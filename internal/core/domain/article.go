package domain

import (
	"errors"
	"time"
)

var ErrArticleNotFound = errors.New("article not found")

// Article is a published post. AuthorID never changes after creation.
type Article struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Image     string         `json:"image,omitempty"`
	AuthorID  string         `json:"authorId"`
	Author    *AuthorSummary `json:"author,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// AuthorSummary is the eager-loaded public projection of an article's owner.
type AuthorSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ArticlePatch carries a partial update. Nil fields are left untouched.
type ArticlePatch struct {
	Title   *string
	Content *string
	Image   *string
}

// Empty reports whether the patch changes nothing.
func (p ArticlePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Image == nil
}
