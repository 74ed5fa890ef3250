// Package archive gives read-only access to the files packed inside an
// e-book container.
//
// EPUB and KEPUB books are opened through their OPF manifest, but every
// zip entry is listed and readable whether or not the manifest names it.
// Containers without a usable manifest are read as plain zip files.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned by ReadFile for names the archive does not hold.
var ErrNotFound = errors.New("archive: file not found")

// Archive is an opened e-book container.
type Archive interface {
	// Names lists internal file paths in container order.
	Names() []string
	// ReadFile returns the raw bytes of the named internal file.
	ReadFile(name string) ([]byte, error)
	Close() error
}

// Opener opens an archive at a filesystem path.
type Opener func(path string) (Archive, error)

// Open opens the book at path, preferring the EPUB manifest and falling
// back to the raw zip listing.
func Open(path string) (Archive, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	a, epubErr := OpenEPUB(path)
	if epubErr == nil {
		return a, nil
	}

	z, zipErr := OpenZip(path)
	if zipErr != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, errors.Join(epubErr, zipErr))
	}
	return z, nil
}

// FindEntry returns the first name that contains fragment.
func FindEntry(a Archive, fragment string) (string, bool) {
	for _, name := range a.Names() {
		if strings.Contains(name, fragment) {
			return name, true
		}
	}
	return "", false
}

func readAll(rc io.ReadCloser, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
