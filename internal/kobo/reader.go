package kobo

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/kobo-exporter/internal/entities"
)

const highlightsQuery = `
	SELECT
		CAST(b.BookmarkID AS INTEGER) AS id,
		b.VolumeID,
		b.ContentID,
		b.Text,
		b.Annotation,
		c.Title,
		c.Attribution
	FROM Bookmark b
	LEFT JOIN content c ON b.VolumeID = c.ContentID
	WHERE b.Text IS NOT NULL
		AND CAST(b.BookmarkID AS INTEGER) > ?
	GROUP BY b.BookmarkID
	ORDER BY CAST(b.BookmarkID AS INTEGER) ASC
`

// Reader reads highlights from a copy of the device database, so the
// device is never written to or locked.
type Reader struct {
	drive   string
	tempDir string
}

// NewReader creates a reader for the device mounted at drive. Snapshots
// are copied into tempDir, or the system temp directory when empty.
func NewReader(drive, tempDir string) (*Reader, error) {
	if !IsDevice(drive) {
		return nil, fmt.Errorf("device database not found: %s", DatabasePath(drive))
	}
	return &Reader{drive: drive, tempDir: tempDir}, nil
}

func (r *Reader) Drive() string {
	return r.drive
}

// GetHighlights returns highlights with an id above afterID, in id order.
func (r *Reader) GetHighlights(afterID int64) ([]entities.Highlight, error) {
	snapshot, cleanup, err := r.snapshot()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	db, err := sql.Open("sqlite3", "file:"+snapshot+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open device database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(highlightsQuery, afterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query highlights: %w", err)
	}
	defer rows.Close()

	var highlights []entities.Highlight
	for rows.Next() {
		var h entities.Highlight
		var volumeID, contentID, note, title, author sql.NullString

		if err := rows.Scan(&h.ID, &volumeID, &contentID, &h.Text, &note, &title, &author); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		h.VolumeID = volumeID.String
		h.ContentID = contentID.String
		h.Note = note.String
		h.BookTitle = title.String
		h.BookAuthor = author.String

		highlights = append(highlights, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return highlights, nil
}

func (r *Reader) snapshot() (string, func(), error) {
	dir, err := os.MkdirTemp(r.tempDir, "kobo-export-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	dst := filepath.Join(dir, databaseName)
	if err := copyFile(DatabasePath(r.drive), dst); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to copy device database: %w", err)
	}
	return dst, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
