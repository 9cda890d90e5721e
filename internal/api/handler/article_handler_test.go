package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/api/middleware"
	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/ports"
)

type stubArticleService struct {
	listFn   func(ctx context.Context) ([]*domain.Article, error)
	createFn func(ctx context.Context, actor domain.Actor, in ports.CreateArticleInput) (*domain.Article, error)
	updateFn func(ctx context.Context, actor domain.Actor, id string, in ports.UpdateArticleInput) (*domain.Article, error)
	deleteFn func(ctx context.Context, actor domain.Actor, id string) error
}

func (s *stubArticleService) List(ctx context.Context) ([]*domain.Article, error) {
	return s.listFn(ctx)
}

func (s *stubArticleService) Get(context.Context, string) (*domain.Article, error) {
	return nil, domain.ErrArticleNotFound
}

func (s *stubArticleService) ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Article, error) {
	return nil, nil
}

func (s *stubArticleService) Create(ctx context.Context, actor domain.Actor, in ports.CreateArticleInput) (*domain.Article, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubArticleService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdateArticleInput) (*domain.Article, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubArticleService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestArticleHandler_Create_Multipart(t *testing.T) {
	e := newTestEcho()
	stub := &stubArticleService{
		createFn: func(ctx context.Context, actor domain.Actor, in ports.CreateArticleInput) (*domain.Article, error) {
			if actor.ID != "w1" || actor.Role != domain.RoleWriter {
				t.Fatalf("unexpected actor: %+v", actor)
			}
			if in.Title != "Hello" || in.Content != "World" || in.Image == nil || in.Image.Filename != "cover.png" {
				t.Fatalf("unexpected input: %+v", in)
			}
			data, _ := io.ReadAll(in.Image.Body)
			if string(data) != "PNG" {
				t.Fatalf("unexpected image body %q", data)
			}
			return &domain.Article{ID: "a1", Title: in.Title, AuthorID: actor.ID, Image: "/uploads/cover.png"}, nil
		},
	}
	handler := NewArticleHandler(stub)

	body, ct := multipartBody(t, map[string]string{"title": "Hello", "content": "World"}, "cover.png", "PNG")
	req := httptest.NewRequest(http.MethodPost, "/api/articles", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserKey, &domain.User{ID: "w1", Role: domain.RoleWriter})

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got domain.Article
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != "a1" || got.Image != "/uploads/cover.png" {
		t.Fatalf("unexpected article: %+v", got)
	}
}

func TestArticleHandler_Update_JSONPartial(t *testing.T) {
	e := newTestEcho()
	stub := &stubArticleService{
		updateFn: func(ctx context.Context, actor domain.Actor, id string, in ports.UpdateArticleInput) (*domain.Article, error) {
			if id != "a1" {
				t.Fatalf("unexpected id %s", id)
			}
			if in.Title == nil || *in.Title != "New" || in.Content != nil || in.Image != nil {
				t.Fatalf("expected title-only patch, got %+v", in)
			}
			return &domain.Article{ID: id, Title: *in.Title}, nil
		},
	}
	handler := NewArticleHandler(stub)

	req := httptest.NewRequest(http.MethodPatch, "/api/articles/a1", strings.NewReader(`{"title":"New"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("a1")
	c.Set(middleware.UserKey, &domain.User{ID: "w1", Role: domain.RoleWriter})

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestArticleHandler_Delete_PropagatesPermissionError(t *testing.T) {
	e := newTestEcho()
	denied := &domain.PermissionError{Action: "deleteArticle", Reason: domain.ReasonForbiddenOwnership}
	stub := &stubArticleService{
		deleteFn: func(ctx context.Context, actor domain.Actor, id string) error { return denied },
	}
	handler := NewArticleHandler(stub)

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/articles/a1", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("a1")
	c.Set(middleware.UserKey, &domain.User{ID: "w2", Role: domain.RoleWriter})

	if err := handler.Delete(c); err != denied {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestArticleHandler_List_EmptyArray(t *testing.T) {
	e := newTestEcho()
	stub := &stubArticleService{listFn: func(ctx context.Context) ([]*domain.Article, error) { return nil, nil }}
	handler := NewArticleHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/articles", nil), rec)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestArticleHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	handler := NewArticleHandler(&stubArticleService{})
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/articles/x", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("x")
	if err := handler.Get(c); err != domain.ErrArticleNotFound {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}
