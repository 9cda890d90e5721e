package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
)

func TestRequire(t *testing.T) {
	tests := []struct {
		name   string
		action policy.Action
		user   *domain.User
		reason domain.Reason
	}{
		{"writer creates", policy.CreateArticle, &domain.User{ID: "w1", Role: domain.RoleWriter}, domain.ReasonNone},
		{"reader creates", policy.CreateArticle, &domain.User{ID: "r1", Role: domain.RoleReader}, domain.ReasonForbiddenRole},
		{"writer lists users", policy.ListUsers, &domain.User{ID: "w1", Role: domain.RoleWriter}, domain.ReasonForbiddenRole},
		{"admin lists users", policy.ListUsers, &domain.User{ID: "a1", Role: domain.RoleAdmin}, domain.ReasonNone},
		{"no user", policy.ListOwnArticles, nil, domain.ReasonUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tt.user != nil {
				c.Set(UserKey, tt.user)
			}

			called := false
			err := Require(tt.action)(func(c echo.Context) error {
				called = true
				return nil
			})(c)

			if tt.reason == domain.ReasonNone {
				if err != nil || !called {
					t.Fatalf("expected pass-through, got err=%v called=%v", err, called)
				}
				return
			}
			var pe *domain.PermissionError
			if !errors.As(err, &pe) || pe.Reason != tt.reason {
				t.Fatalf("expected reason %s, got %v", tt.reason, err)
			}
			if called {
				t.Fatalf("next must not run on deny")
			}
		})
	}
}
