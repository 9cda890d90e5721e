package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/quillpress/blog-system/internal/core/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printArticles(w io.Writer, articles []*domain.Article) error {
	if a.output == "json" {
		return printJSON(w, articles)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCREATED")
	for _, art := range articles {
		author := art.AuthorID
		if art.Author != nil {
			author = art.Author.Username
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", art.ID, art.Title, author, art.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *app) printArticle(w io.Writer, art *domain.Article) error {
	if a.output == "json" {
		return printJSON(w, art)
	}
	fmt.Fprintf(w, "%s\n", art.Title)
	if art.Author != nil {
		fmt.Fprintf(w, "by %s on %s\n", art.Author.Username, art.CreatedAt.Format("2006-01-02"))
	}
	if art.Image != "" {
		fmt.Fprintf(w, "image: %s\n", art.Image)
	}
	fmt.Fprintf(w, "\n%s\n", art.Content)
	return nil
}

func (a *app) printUsers(w io.Writer, users []*domain.User) error {
	if a.output == "json" {
		return printJSON(w, users)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
	}
	return tw.Flush()
}

func (a *app) printUser(w io.Writer, u *domain.User) error {
	if a.output == "json" {
		return printJSON(w, u)
	}
	fmt.Fprintf(w, "%s <%s> role=%s id=%s\n", u.Username, u.Email, u.Role, u.ID)
	return nil
}
