package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quillpress/blog-system/internal/client/apiclient"
	"github.com/quillpress/blog-system/internal/core/policy"
)

func (a *app) cmdArticles() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"article"},
		Short:   "Read and manage articles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all articles, newest first",
			Args:  cobra.NoArgs,
			RunE: a.open(func(cmd *cobra.Command, _ []string) error {
				list, err := a.client.ListArticles(cmd.Context())
				if err != nil {
					return err
				}
				return a.printArticles(a.stdout(cmd), list)
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one article",
			Args:  cobra.ExactArgs(1),
			RunE: a.open(func(cmd *cobra.Command, args []string) error {
				art, err := a.client.GetArticle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printArticle(a.stdout(cmd), art)
			}),
		},
		&cobra.Command{
			Use:   "mine",
			Short: "List articles you wrote",
			Args:  cobra.NoArgs,
			RunE: a.guarded(policy.ListOwnArticles, func(cmd *cobra.Command, _ []string) error {
				list, err := a.client.MyArticles(cmd.Context())
				if err != nil {
					return err
				}
				return a.printArticles(a.stdout(cmd), list)
			}),
		},
		a.cmdArticleCreate(),
		a.cmdArticleUpdate(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an article",
			Args:  cobra.ExactArgs(1),
			RunE: a.guarded(policy.DeleteArticle, func(cmd *cobra.Command, args []string) error {
				if err := a.client.DeleteArticle(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout(cmd), "Deleted article %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}

func (a *app) cmdArticleCreate() *cobra.Command {
	var title, content, image string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new article",
		Args:  cobra.NoArgs,
		RunE: a.guarded(policy.CreateArticle, func(cmd *cobra.Command, _ []string) error {
			art, err := a.client.CreateArticle(cmd.Context(), apiclient.ArticleInput{
				Title: &title, Content: &content, ImagePath: image,
			})
			if err != nil {
				return err
			}
			return a.printArticle(a.stdout(cmd), art)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "article title")
	cmd.Flags().StringVar(&content, "content", "", "article body")
	cmd.Flags().StringVar(&image, "image", "", "path to an image to upload")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func (a *app) cmdArticleUpdate() *cobra.Command {
	var title, content, image string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an article's title, content or image",
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(policy.UpdateArticle, func(cmd *cobra.Command, args []string) error {
			in := apiclient.ArticleInput{
				Title:     changed(cmd.Flags(), "title", title),
				Content:   changed(cmd.Flags(), "content", content),
				ImagePath: image,
			}
			art, err := a.client.UpdateArticle(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return a.printArticle(a.stdout(cmd), art)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new body")
	cmd.Flags().StringVar(&image, "image", "", "path to a replacement image")
	return cmd
}

// changed returns &value only when the flag was given, so an explicit empty
// string still reaches the server.
func changed(fs *pflag.FlagSet, name, value string) *string {
	if !fs.Changed(name) {
		return nil
	}
	return &value
}
