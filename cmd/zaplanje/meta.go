package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zaplanje/price/internal/api/handler"
	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/service"
	"github.com/zaplanje/price/internal/infrastructure/htmlhead"
)

type metaOptions struct {
	post     string
	origin   string
	path     string
	shell    string
	tagsOnly bool
}

func newMetaCmd() *cobra.Command {
	opts := metaOptions{}
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Render the link-preview page for a post",
		Long: `Render the page shell with Open Graph and Twitter tags for a post read as
JSON from --post (or stdin). Useful for prerendering pages for crawlers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMeta(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.post, "post", "-", "Path to the post JSON, - for stdin")
	cmd.Flags().StringVar(&opts.origin, "origin", "http://localhost:5173", "Site origin share links point at")
	cmd.Flags().StringVar(&opts.path, "path", "/", "Page path share links point at")
	cmd.Flags().StringVar(&opts.shell, "shell", "", "HTML template to render into; the built-in shell when empty")
	cmd.Flags().BoolVar(&opts.tagsOnly, "tags-only", false, "Print the meta tags as JSON instead of the page")
	return cmd
}

func runMeta(stdin io.Reader, out io.Writer, opts metaOptions) error {
	in := stdin
	if opts.post != "-" {
		f, err := os.Open(opts.post)
		if err != nil {
			return fmt.Errorf("open post: %w", err)
		}
		defer f.Close()
		in = f
	}

	var post domain.Post
	if err := json.NewDecoder(in).Decode(&post); err != nil {
		return fmt.Errorf("decode post: %w", err)
	}
	if err := handler.NewValidator().Validate(&post); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	share := service.NewShareService(service.Location{Origin: opts.origin, Path: opts.path}, zerolog.Nop())
	meta := service.NewMetaService(share)

	if opts.tagsOnly {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(meta.TagsForPost(post))
	}

	shell, err := htmlhead.LoadShell(opts.shell)
	if err != nil {
		return err
	}
	doc, err := shell.Document()
	if err != nil {
		return err
	}
	meta.UpdateMetaTagsForPost(doc, post)
	return doc.Render(out)
}
