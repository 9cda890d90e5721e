package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/core/domain"
)

type stubAuthenticator struct {
	users map[string]*domain.User
	err   error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, raw string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if raw == "" {
		return nil, domain.ErrCredentialMissing
	}
	u, ok := s.users[raw]
	if !ok {
		return nil, domain.ErrCredentialInvalid
	}
	return u, nil
}

func newStubAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{users: map[string]*domain.User{
		"admin-token":  {ID: "a1", Role: domain.RoleAdmin},
		"writer-token": {ID: "w1", Role: domain.RoleWriter},
		"reader-token": {ID: "r1", Role: domain.RoleReader},
	}}
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer writer-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Authenticate(newStubAuthenticator())(func(c echo.Context) error {
		called = true
		user, ok := c.Get(UserKey).(*domain.User)
		if !ok || user.ID != "w1" {
			t.Fatalf("user not set: %+v", c.Get(UserKey))
		}
		if c.Get(RoleKey) != "writer" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_Cookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "reader-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(newStubAuthenticator())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"invalid token", "Bearer forged"},
		{"wrong scheme", "Token writer-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Authenticate(newStubAuthenticator())(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			err := handler(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusUnauthorized || he.Message != "Unauthorized" {
				t.Fatalf("expected 401 Unauthorized, got %v", err)
			}
		})
	}
}

func TestAuthenticate_UpstreamFailurePassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer writer-token")
	c := e.NewContext(req, httptest.NewRecorder())

	boom := errors.New("db down")
	handler := Authenticate(&stubAuthenticator{err: boom})(func(c echo.Context) error { return nil })
	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
