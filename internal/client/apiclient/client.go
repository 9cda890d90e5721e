// Package apiclient talks to the blog API on behalf of blogctl. Every
// request carries the stored credential on both channels: the bearer header
// and the token cookie.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quillpress/blog-system/internal/client/session"
	"github.com/quillpress/blog-system/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

// Error is a non-2xx response from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Redirect is where the client should send the user after this error.
func (e *Error) Redirect() string {
	switch e.Status {
	case http.StatusUnauthorized:
		return "/login"
	case http.StatusForbidden:
		return "/"
	}
	return ""
}

// AsError unwraps an *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store
}

func New(baseURL string, sessions *session.Store) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout, Jar: sessions.Jar()},
		sessions: sessions,
	}
}

type AuthResult struct {
	Token    string       `json:"token"`
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

// Register creates a reader account and stores the returned credential.
func (c *Client) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/register", map[string]string{
		"email": email, "username": username, "password": password,
	})
}

// Login stores the returned credential.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResult, error) {
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}
	if _, err := c.sessions.Save(res.Token); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout tells the server and always discards the local credential.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if clearErr := c.sessions.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var res struct {
		User *domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *Client) ListArticles(ctx context.Context) ([]*domain.Article, error) {
	var out []*domain.Article
	return out, c.doJSON(ctx, http.MethodGet, "/api/articles", nil, &out)
}

func (c *Client) MyArticles(ctx context.Context) ([]*domain.Article, error) {
	var out []*domain.Article
	return out, c.doJSON(ctx, http.MethodGet, "/api/articles/mine", nil, &out)
}

func (c *Client) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	var out domain.Article
	if err := c.doJSON(ctx, http.MethodGet, "/api/articles/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArticleInput is a create or partial update. Nil fields are omitted;
// ImagePath, when set, is uploaded as the article image.
type ArticleInput struct {
	Title     *string
	Content   *string
	ImagePath string
}

func (c *Client) CreateArticle(ctx context.Context, in ArticleInput) (*domain.Article, error) {
	var out domain.Article
	if err := c.sendArticle(ctx, http.MethodPost, "/api/articles", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateArticle(ctx context.Context, id string, in ArticleInput) (*domain.Article, error) {
	var out domain.Article
	if err := c.sendArticle(ctx, http.MethodPatch, "/api/articles/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/articles/"+id, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var res struct {
		Users []*domain.User `json:"users"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/users", nil, &res); err != nil {
		return nil, err
	}
	return res.Users, nil
}

func (c *Client) SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	var res struct {
		User *domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/users/"+id, map[string]string{"role": string(role)}, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+id, nil, nil)
}

func (c *Client) sendArticle(ctx context.Context, method, path string, in ArticleInput, out any) error {
	if in.ImagePath == "" {
		body := map[string]string{}
		if in.Title != nil {
			body["title"] = *in.Title
		}
		if in.Content != nil {
			body["content"] = *in.Content
		}
		return c.doJSON(ctx, method, path, body, out)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if in.Title != nil {
		_ = mw.WriteField("title", *in.Title)
	}
	if in.Content != nil {
		_ = mw.WriteField("content", *in.Content)
	}
	f, err := os.Open(in.ImagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	part, err := mw.CreateFormFile("image", filepath.Base(in.ImagePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(ctx, method, path, mw.FormDataContentType(), &buf, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, r, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	sess.Authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
