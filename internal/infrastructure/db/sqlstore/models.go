package sqlstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quillpress/blog-system/internal/core/domain"
)

type userModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type articleModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text;not null"`
	Image     string
	AuthorID  string     `gorm:"index;size:36;not null"`
	Author    *userModel `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time  `gorm:"index"`
	UpdatedAt time.Time
}

func (articleModel) TableName() string { return "articles" }

func (m *articleModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *articleModel) toDomain() *domain.Article {
	a := &domain.Article{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Image:     m.Image,
		AuthorID:  m.AuthorID,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.Author != nil {
		a.Author = m.Author.toDomain().Summary()
	}
	return a
}
