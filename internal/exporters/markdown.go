package exporters

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

// MarkdownWriter mirrors the HTML output as one Markdown note per book,
// with frontmatter suited to note-taking vaults.
type MarkdownWriter struct {
	Dir  string
	conv *converter.Converter
}

func NewMarkdownWriter(dir string) *MarkdownWriter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	return &MarkdownWriter{Dir: dir, conv: conv}
}

func (w *MarkdownWriter) Name() string { return "markdown" }

func (w *MarkdownWriter) Write(entry Entry) error {
	body, err := w.render(entry)
	if err != nil {
		return err
	}
	path := BookPath(w.Dir, entry.BookLabel, MarkdownExtension)
	return appendFile(path, func() string { return markdownHeader(entry) }, body)
}

func markdownHeader(entry Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\n")
	fmt.Fprintf(&b, "content_source: kobo\n")
	fmt.Fprintf(&b, "content_type: book_highlights\n")
	fmt.Fprintf(&b, "created_at: %s\n", entry.ExportedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "title: \"%s\"\n", strings.ReplaceAll(entry.Title, "\"", "\\\""))
	fmt.Fprintf(&b, "author: \"%s\"\n", strings.ReplaceAll(entry.Author, "\"", "\\\""))
	fmt.Fprintf(&b, "tags: [highlights, books]\n")
	fmt.Fprintf(&b, "---\n\n")
	fmt.Fprintf(&b, "## Highlights\n\n")
	return b.String()
}

func (w *MarkdownWriter) render(entry Entry) (string, error) {
	// Marks have no Markdown form; bold keeps them visible.
	fragment := strings.ReplaceAll(entry.Fragment, "<mark>", "<strong>")
	fragment = strings.ReplaceAll(fragment, "</mark>", "</strong>")

	text, err := w.conv.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("failed to convert highlight to markdown: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(strings.TrimSpace(text), "\n", "\n> "))
	if note := strings.TrimSpace(entry.Note); note != "" {
		fmt.Fprintf(&b, "**My Note:** %s\n\n", note)
	}
	fmt.Fprintf(&b, "---\n\n")
	return b.String(), nil
}
