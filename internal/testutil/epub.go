// Package testutil builds on-disk fixtures shared by package tests.
package testutil

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// WriteEPUB writes a minimal EPUB whose manifest lists every chapter.
// Chapter keys are paths relative to the OEBPS directory.
func WriteEPUB(t *testing.T, dir, name string, chapters map[string]string) string {
	t.Helper()
	return WriteEPUBWithExtras(t, dir, name, chapters, nil)
}

// WriteEPUBWithExtras is WriteEPUB plus extra zip entries, keyed by full
// container path, that the manifest does not list.
func WriteEPUBWithExtras(t *testing.T, dir, name string, chapters, extras map[string]string) string {
	t.Helper()

	hrefs := make([]string, 0, len(chapters))
	for href := range chapters {
		hrefs = append(hrefs, href)
	}
	sort.Strings(hrefs)

	var manifest, spine strings.Builder
	for i, href := range hrefs {
		fmt.Fprintf(&manifest, `<item id="c%d" href="%s" media-type="application/xhtml+xml"/>`, i, href)
		fmt.Fprintf(&spine, `<itemref idref="c%d"/>`, i)
	}

	opf := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Fixture</dc:title></metadata>
  <manifest>%s</manifest>
  <spine>%s</spine>
</package>`, manifest.String(), spine.String())

	files := map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      opf,
	}
	for href, body := range chapters {
		files["OEBPS/"+href] = body
	}
	for p, body := range extras {
		files[p] = body
	}

	return WriteZip(t, dir, name, files)
}

// WriteZip writes a zip file with a stored mimetype entry followed by files
// in name order.
func WriteZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("Failed to write mimetype: %v", err)
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("Failed to write mimetype: %v", err)
	}

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", n, err)
		}
		if _, err := w.Write([]byte(files[n])); err != nil {
			t.Fatalf("Failed to write %s: %v", n, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return path
}

// XHTML wraps body markup in a minimal XHTML document.
func XHTML(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter</title></head>
<body>` + body + `</body>
</html>`
}
