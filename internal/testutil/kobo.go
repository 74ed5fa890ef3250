package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Bookmark is a row of the device Bookmark table. Nil Text or Annotation
// is stored as NULL.
type Bookmark struct {
	ID         string
	VolumeID   string
	ContentID  string
	Text       any
	Annotation any
}

// Content is a row of the device content table.
type Content struct {
	ContentID   string
	Title       any
	Attribution any
}

// WriteKoboDevice lays out a fake mounted device under root with a minimal
// .kobo/KoboReader.sqlite and returns root.
func WriteKoboDevice(t *testing.T, root string, bookmarks []Bookmark, contents []Content) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Join(root, ".kobo"), 0755); err != nil {
		t.Fatalf("Failed to create device dir: %v", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(root, ".kobo", "KoboReader.sqlite"))
	if err != nil {
		t.Fatalf("Failed to create device database: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE Bookmark (
			BookmarkID TEXT NOT NULL PRIMARY KEY,
			VolumeID TEXT NOT NULL,
			ContentID TEXT NOT NULL,
			Text TEXT,
			Annotation TEXT
		);
		CREATE TABLE content (
			ContentID TEXT NOT NULL PRIMARY KEY,
			Title TEXT,
			Attribution TEXT
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	for _, b := range bookmarks {
		_, err := db.Exec(`INSERT INTO Bookmark (BookmarkID, VolumeID, ContentID, Text, Annotation) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.VolumeID, b.ContentID, b.Text, b.Annotation)
		if err != nil {
			t.Fatalf("Failed to insert bookmark: %v", err)
		}
	}
	for _, c := range contents {
		_, err := db.Exec(`INSERT INTO content (ContentID, Title, Attribution) VALUES (?, ?, ?)`,
			c.ContentID, c.Title, c.Attribution)
		if err != nil {
			t.Fatalf("Failed to insert content: %v", err)
		}
	}

	return root
}
