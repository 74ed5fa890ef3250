package entities

import (
	"path"
	"strings"
	"time"
)

const UnknownAuthor = "Unknown Author"

// Highlight is one bookmark row read from the device database.
type Highlight struct {
	ID        int64
	VolumeID  string // book locator, e.g. file:///mnt/onboard/Author/Book.kepub.epub
	ContentID string // chapter locator inside the book
	Text      string
	Note      string
	BookTitle string
	// BookAuthor is stored by the device as "Last, First".
	BookAuthor string
}

func (h Highlight) HasNote() bool {
	return strings.TrimSpace(h.Note) != ""
}

// CleanAuthor turns "Last, First" into "First Last".
func (h Highlight) CleanAuthor() string {
	author := strings.TrimSpace(h.BookAuthor)
	if !strings.Contains(author, ",") {
		if author == "" {
			return UnknownAuthor
		}
		return author
	}

	parts := strings.Split(author, ",")
	names := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			names = append(names, p)
		}
	}
	if len(names) == 0 {
		return UnknownAuthor
	}
	return strings.Join(names, " ")
}

// CleanTitle falls back to the file name of the book.
func (h Highlight) CleanTitle() string {
	if title := strings.TrimSpace(h.BookTitle); title != "" {
		return title
	}
	return path.Base(h.VolumeID)
}

// BookLabel identifies the book in file names and logs.
func (h Highlight) BookLabel() string {
	return h.CleanAuthor() + " - " + h.CleanTitle()
}

// ExportedHighlight is a highlight as it was written to the output files.
type ExportedHighlight struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookmarkID int64     `gorm:"uniqueIndex" json:"bookmark_id"`
	RunID      string    `gorm:"index;size:36" json:"run_id"`
	BookLabel  string    `gorm:"index;size:512" json:"book_label"`
	Title      string    `gorm:"size:512" json:"title"`
	Author     string    `gorm:"size:256" json:"author"`
	Text       string    `gorm:"type:text" json:"text"`
	Note       string    `gorm:"type:text" json:"note,omitempty"`
	Context    string    `gorm:"type:text" json:"context"`
	Marked     string    `gorm:"type:text" json:"marked"`
	ExportedAt time.Time `json:"exported_at"`
}

func (ExportedHighlight) TableName() string {
	return "exported_highlights"
}

// BookSummary aggregates exported highlights per book.
type BookSummary struct {
	BookLabel      string    `json:"book_label"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	HighlightCount int64     `json:"highlight_count"`
	LastExportedAt time.Time `json:"last_exported_at"`
}
