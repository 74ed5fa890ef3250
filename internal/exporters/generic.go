package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/kobo-exporter/internal/utils"
)

// Entry is one highlight ready to be written to its book's file.
type Entry struct {
	BookLabel string
	Title     string
	Author    string
	// Fragment is the context with the highlight marked, as HTML or plain
	// text.
	Fragment   string
	Note       string
	ExportedAt time.Time
}

// HighlightWriter appends entries to per-book output files.
type HighlightWriter interface {
	Name() string
	Write(entry Entry) error
}

// File extensions of the per-book outputs.
const (
	HTMLExtension     = ".html"
	MarkdownExtension = ".md"
)

// BookPath is the output file for a book label with the given extension.
func BookPath(dir, label, ext string) string {
	return filepath.Join(dir, utils.SanitizeFilename(label)+ext)
}

// appendFile opens path for appending. header is written first when the
// file does not exist yet.
func appendFile(path string, header func() string, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, 0644)
	created := err == nil
	if os.IsExist(err) {
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if created {
		body = header() + body
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
