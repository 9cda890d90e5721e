package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quillpress/blog-system/internal/core/ports"
)

// ArticleHandler handles HTTP requests for article operations.
type ArticleHandler struct {
	service ports.ArticleService
}

func NewArticleHandler(service ports.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// articleRequest is the JSON form of a create or update. Multipart requests
// carry the same fields plus an optional "image" file.
type articleRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type articleForm struct {
	title   *string
	content *string
	image   *ports.Upload
	file    multipart.File
}

func (f *articleForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

func readArticleForm(c echo.Context) (*articleForm, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		var req articleRequest
		if err := c.Bind(&req); err != nil {
			return nil, err
		}
		return &articleForm{title: req.Title, content: req.Content}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}
	out := &articleForm{
		title:   firstValue(form.Value["title"]),
		content: firstValue(form.Value["content"]),
	}
	if files := form.File["image"]; len(files) > 0 && files[0].Size > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, err
		}
		out.file = f
		out.image = &ports.Upload{Filename: files[0].Filename, Body: f}
	}
	return out, nil
}

func firstValue(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List returns every article, newest first.
//
// @Summary      List articles
// @Tags         articles
// @Produce      json
// @Success      200  {array}   domain.Article
// @Router       /api/articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	articles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(articles))
}

// Mine returns the caller's own articles.
//
// @Summary      List own articles
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Article
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/articles/mine [get]
func (h *ArticleHandler) Mine(c echo.Context) error {
	articles, err := h.service.ListMine(c.Request().Context(), actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(articles))
}

// Get returns a single article.
//
// @Summary      Get article
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  domain.Article
// @Failure      404  {object}  map[string]string
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) Get(c echo.Context) error {
	article, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, article)
}

// Create publishes a new article owned by the caller.
//
// @Summary      Create article
// @Tags         articles
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        title    formData  string  true   "Title"
// @Param        content  formData  string  true   "Content"
// @Param        image    formData  file    false  "Cover image"
// @Success      201  {object}  domain.Article
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	form, err := readArticleForm(c)
	if err != nil {
		return err
	}
	defer form.close()

	article, err := h.service.Create(c.Request().Context(), actorFrom(c), ports.CreateArticleInput{
		Title:   deref(form.title),
		Content: deref(form.content),
		Image:   form.image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, article)
}

// Update changes an article. Writers may only update their own.
//
// @Summary      Update article
// @Tags         articles
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true   "Article ID"
// @Param        title    formData  string  false  "Title"
// @Param        content  formData  string  false  "Content"
// @Param        image    formData  file    false  "Cover image"
// @Success      200  {object}  domain.Article
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/articles/{id} [patch]
func (h *ArticleHandler) Update(c echo.Context) error {
	form, err := readArticleForm(c)
	if err != nil {
		return err
	}
	defer form.close()

	article, err := h.service.Update(c.Request().Context(), actorFrom(c), c.Param("id"), ports.UpdateArticleInput{
		Title:   form.title,
		Content: form.content,
		Image:   form.image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, article)
}

// Delete removes an article. Writers may only delete their own.
//
// @Summary      Delete article
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), actorFrom(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Article deleted successfully"})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

