package archive

import (
	"archive/zip"
	"fmt"
)

type zipArchive struct {
	rc    *zip.ReadCloser
	names []string
	files map[string]*zip.File
}

// OpenZip opens path as a plain zip container.
func OpenZip(filename string) (Archive, error) {
	return openZip(filename)
}

func openZip(filename string) (*zipArchive, error) {
	rc, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	a := &zipArchive{
		rc:    rc,
		files: make(map[string]*zip.File, len(rc.File)),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		a.names = append(a.names, f.Name)
		a.files[f.Name] = f
	}

	return a, nil
}

func (a *zipArchive) Names() []string {
	return a.names
}

func (a *zipArchive) ReadFile(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return readAll(f.Open())
}

func (a *zipArchive) Close() error {
	return a.rc.Close()
}
