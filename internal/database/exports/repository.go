// Package exports keeps a copy of every highlight the exporter has written,
// so the output can be browsed without the device attached.
package exports

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/kobo-exporter/internal/entities"
)

// Repository handles exported highlight database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new exports repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveHighlight stores h, replacing an earlier export of the same bookmark.
func (r *Repository) SaveHighlight(h *entities.ExportedHighlight) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bookmark_id"}},
		UpdateAll: true,
	}).Create(h).Error
}

// ListBooks summarizes exported highlights per book, most recent first.
func (r *Repository) ListBooks() ([]entities.BookSummary, error) {
	var rows []entities.ExportedHighlight
	err := r.db.Select("book_label", "title", "author", "exported_at").
		Order("bookmark_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var books []entities.BookSummary
	for _, h := range rows {
		i, ok := index[h.BookLabel]
		if !ok {
			i = len(books)
			index[h.BookLabel] = i
			books = append(books, entities.BookSummary{
				BookLabel: h.BookLabel,
				Title:     h.Title,
				Author:    h.Author,
			})
		}
		books[i].HighlightCount++
		if h.ExportedAt.After(books[i].LastExportedAt) {
			books[i].LastExportedAt = h.ExportedAt
		}
	}

	sort.SliceStable(books, func(a, b int) bool {
		if !books[a].LastExportedAt.Equal(books[b].LastExportedAt) {
			return books[a].LastExportedAt.After(books[b].LastExportedAt)
		}
		return books[a].BookLabel < books[b].BookLabel
	})
	return books, nil
}

// GetBookHighlights returns the highlights of one book in reading order.
func (r *Repository) GetBookHighlights(bookLabel string) ([]entities.ExportedHighlight, error) {
	var highlights []entities.ExportedHighlight
	err := r.db.Where("book_label = ?", bookLabel).Order("bookmark_id ASC").Find(&highlights).Error
	return highlights, err
}

// GetRunHighlights returns the highlights exported by one run.
func (r *Repository) GetRunHighlights(runID string) ([]entities.ExportedHighlight, error) {
	var highlights []entities.ExportedHighlight
	err := r.db.Where("run_id = ?", runID).Order("bookmark_id ASC").Find(&highlights).Error
	return highlights, err
}

// Search finds highlights whose text or note contains query.
func (r *Repository) Search(query string, limit int) ([]entities.ExportedHighlight, error) {
	var highlights []entities.ExportedHighlight
	pattern := "%" + query + "%"
	q := r.db.Where("LOWER(text) LIKE LOWER(?) OR LOWER(note) LIKE LOWER(?)", pattern, pattern).
		Order("bookmark_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&highlights).Error
	return highlights, err
}
