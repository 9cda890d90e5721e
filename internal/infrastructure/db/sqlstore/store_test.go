package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quillpress/blog-system/internal/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, name string, role domain.Role) *domain.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), &domain.User{
		Email:        name + "@example.com",
		Username:     name,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestUsers_CreateAndFind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := createUser(t, s, "alice", domain.RoleReader)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := s.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)

	byEmail, err := s.Users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.Users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = s.Users.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUsers_UniqueEmailAndUsername(t *testing.T) {
	s := openTestStore(t)
	createUser(t, s, "alice", domain.RoleReader)

	_, err := s.Users.Create(context.Background(), &domain.User{
		Email: "alice@example.com", Username: "other", PasswordHash: "h", Role: domain.RoleReader,
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = s.Users.Create(context.Background(), &domain.User{
		Email: "other@example.com", Username: "alice", PasswordHash: "h", Role: domain.RoleReader,
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUsers_UpdateRoleListDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "bob", domain.RoleReader)
	createUser(t, s, "carol", domain.RoleWriter)

	updated, err := s.Users.UpdateRole(ctx, u.ID, domain.RoleWriter)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWriter, updated.Role)

	_, err = s.Users.UpdateRole(ctx, "missing", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	all, err := s.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Users.Delete(ctx, u.ID))
	assert.ErrorIs(t, s.Users.Delete(ctx, u.ID), domain.ErrUserNotFound)
}

func TestArticles_CRUDWithAuthor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	w := createUser(t, s, "writer", domain.RoleWriter)

	a, err := s.Articles.Create(ctx, &domain.Article{Title: "Hello", Content: "World", AuthorID: w.ID})
	require.NoError(t, err)
	require.NotNil(t, a.Author)
	assert.Equal(t, "writer", a.Author.Username)
	assert.Equal(t, "writer@example.com", a.Author.Email)

	title := "Hello again"
	image := "/uploads/x.png"
	updated, err := s.Articles.Update(ctx, a.ID, domain.ArticlePatch{Title: &title, Image: &image})
	require.NoError(t, err)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, "World", updated.Content)
	assert.Equal(t, image, updated.Image)
	assert.Equal(t, w.ID, updated.AuthorID)

	unchanged, err := s.Articles.Update(ctx, a.ID, domain.ArticlePatch{})
	require.NoError(t, err)
	assert.Equal(t, "Hello again", unchanged.Title)

	_, err = s.Articles.Update(ctx, "missing", domain.ArticlePatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)

	require.NoError(t, s.Articles.Delete(ctx, a.ID))
	_, err = s.Articles.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	assert.ErrorIs(t, s.Articles.Delete(ctx, a.ID), domain.ErrArticleNotFound)
}

func TestArticles_ListOrderAndByAuthor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	w1 := createUser(t, s, "w1", domain.RoleWriter)
	w2 := createUser(t, s, "w2", domain.RoleWriter)

	for _, spec := range []struct{ title, author string }{
		{"first", w1.ID}, {"second", w2.ID}, {"third", w1.ID},
	} {
		_, err := s.Articles.Create(ctx, &domain.Article{Title: spec.title, Content: "c", AuthorID: spec.author})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	all, err := s.Articles.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].Title, all[1].Title, all[2].Title})
	for _, a := range all {
		require.NotNil(t, a.Author)
	}

	mine, err := s.Articles.ListByAuthor(ctx, w1.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "third", mine[0].Title)

	n, err := s.Articles.DeleteByAuthor(ctx, w1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rest, err := s.Articles.List(ctx)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, w2.ID, rest[0].AuthorID)
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestUsers_DeleteWithArticles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	w := createUser(t, s, "wes", domain.RoleWriter)
	other := createUser(t, s, "olga", domain.RoleWriter)
	for _, author := range []string{w.ID, w.ID, other.ID} {
		_, err := s.Articles.Create(ctx, &domain.Article{Title: "t", Content: "c", AuthorID: author})
		require.NoError(t, err)
	}

	n, err := s.Users.DeleteWithArticles(ctx, w.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = s.Users.FindByID(ctx, w.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	rest, err := s.Articles.List(ctx)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, other.ID, rest[0].AuthorID)

	_, err = s.Users.DeleteWithArticles(ctx, w.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUsers_DeleteWithArticles_RollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	w := createUser(t, s, "rollo", domain.RoleWriter)
	_, err := s.Articles.Create(ctx, &domain.Article{Title: "kept", Content: "c", AuthorID: w.ID})
	require.NoError(t, err)

	boom := errors.New("user delete failed")
	require.NoError(t, s.db.Callback().Delete().Before("gorm:delete").Register("test:fail_users", func(db *gorm.DB) {
		if db.Statement.Table == "users" {
			_ = db.AddError(boom)
		}
	}))

	_, err = s.Users.DeleteWithArticles(ctx, w.ID)
	require.ErrorIs(t, err, boom)

	mine, err := s.Articles.ListByAuthor(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1, "articles must survive a failed user delete")
}
