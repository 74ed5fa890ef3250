package archive

import (
	"fmt"
	"net/url"
	"path"

	"github.com/taylorskalyo/goreader/epub"
)

// epubArchive lists every zip entry in container order. Manifest items are
// read through goreader; anything else is read from the zip directly.
type epubArchive struct {
	rc    *epub.ReadCloser
	zip   *zipArchive
	items map[string]*epub.Item
}

// OpenEPUB opens path as an EPUB and indexes every manifest item by its
// path inside the container.
func OpenEPUB(filename string) (Archive, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}

	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, fmt.Errorf("no rootfiles found in epub")
	}

	z, err := openZip(filename)
	if err != nil {
		rc.Close()
		return nil, err
	}

	a := &epubArchive{
		rc:    rc,
		zip:   z,
		items: make(map[string]*epub.Item),
	}

	for _, rf := range rc.Rootfiles {
		base := path.Dir(rf.FullPath)
		for i := range rf.Manifest.Items {
			item := &rf.Manifest.Items[i]
			href := item.HREF
			if unescaped, err := url.PathUnescape(href); err == nil {
				href = unescaped
			}
			name := path.Join(base, href)
			if _, seen := a.items[name]; seen {
				continue
			}
			a.items[name] = item
		}
	}

	return a, nil
}

func (a *epubArchive) Names() []string {
	return a.zip.Names()
}

func (a *epubArchive) ReadFile(name string) ([]byte, error) {
	if item, ok := a.items[name]; ok {
		return readAll(item.Open())
	}
	return a.zip.ReadFile(name)
}

func (a *epubArchive) Close() error {
	a.rc.Close()
	return a.zip.Close()
}
