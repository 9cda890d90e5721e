package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "login", "dashboard", "manage_articles", "manage_users"}

// Renderer renders the embedded page templates for echo.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, name+".html", data)
}

type pageData struct {
	Title    string
	User     *domain.User
	Articles []*domain.Article
	Users    []*domain.User
}

// PageHandler serves the HTML pages. Dashboard pages sit behind the page gate.
type PageHandler struct {
	articles ports.ArticleService
	users    ports.UserService
}

func NewPageHandler(articles ports.ArticleService, users ports.UserService) *PageHandler {
	return &PageHandler{articles: articles, users: users}
}

func (h *PageHandler) Home(c echo.Context) error {
	articles, err := h.articles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "home", pageData{Title: "Latest articles", Articles: articles})
}

func (h *PageHandler) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "login", pageData{Title: "Login"})
}

func (h *PageHandler) Dashboard(c echo.Context) error {
	return c.Render(http.StatusOK, "dashboard", pageData{Title: "Dashboard", User: currentUser(c)})
}

// ManageArticles lists every article for admins and the caller's own for writers.
func (h *PageHandler) ManageArticles(c echo.Context) error {
	user := currentUser(c)
	var (
		articles []*domain.Article
		err      error
	)
	if user != nil && user.Role == domain.RoleAdmin {
		articles, err = h.articles.List(c.Request().Context())
	} else {
		articles, err = h.articles.ListMine(c.Request().Context(), domain.ActorOf(user))
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "manage_articles", pageData{Title: "Manage articles", User: user, Articles: articles})
}

func (h *PageHandler) ManageUsers(c echo.Context) error {
	user := currentUser(c)
	users, err := h.users.List(c.Request().Context(), domain.ActorOf(user))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "manage_users", pageData{Title: "Manage users", User: user, Users: users})
}
