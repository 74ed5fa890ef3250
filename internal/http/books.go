package http

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kobo-exporter/internal/exporters"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

type BooksController struct {
	store    BookStore
	settings SettingsStore
}

func NewBooksController(store BookStore, settings SettingsStore) *BooksController {
	return &BooksController{
		store:    store,
		settings: settings,
	}
}

// GetAllBooks handles GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.store.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBookStats handles GET /api/books/stats
func (controller *BooksController) GetBookStats(c *gin.Context) {
	books, err := controller.store.ListBooks()
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}

	var totalHighlights int64
	for _, book := range books {
		totalHighlights += book.HighlightCount
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"total_books":      len(books),
		"total_highlights": totalHighlights,
	})
}

// GetBookHighlights handles GET /api/books/highlights?book=<label>
// Labels are "<author> - <title>" and may contain slashes, so they travel
// in the query string.
func (controller *BooksController) GetBookHighlights(c *gin.Context) {
	label := c.Query("book")
	if label == "" {
		respondBadRequest(c, "book query parameter is required")
		return
	}

	highlights, err := controller.store.GetBookHighlights(label)
	if err != nil {
		respondInternalError(c, err, "book highlights")
		return
	}
	if len(highlights) == 0 {
		respondNotFound(c, "book")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"book": label, "highlights": highlights, "count": len(highlights)})
}

// SearchHighlights handles GET /api/highlights/search?q=<text>
func (controller *BooksController) SearchHighlights(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}
	limit, ok := parseLimit(c, defaultSearchLimit, maxSearchLimit)
	if !ok {
		return
	}

	highlights, err := controller.store.Search(query, limit)
	if err != nil {
		respondInternalError(c, err, "search highlights")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"highlights": highlights, "count": len(highlights)})
}

// ViewBook handles GET /books/view?book=<label> and serves the exported
// HTML file of a book.
func (controller *BooksController) ViewBook(c *gin.Context) {
	label := c.Query("book")
	if label == "" {
		respondBadRequest(c, "book query parameter is required")
		return
	}

	path := exporters.BookPath(controller.settings.ExportDir(), label, exporters.HTMLExtension)
	if _, err := os.Stat(path); err != nil {
		respondNotFound(c, "export file")
		return
	}
	c.File(path)
}
