package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	// Whitespace runs, including newlines and tabs
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a book label into a file name that is valid on
// Windows, macOS and Linux. The result is never empty.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Leave room for the extension
	if len(filename) > 200 {
		filename = strings.TrimSpace(Prefix(filename, 200))
		for len(filename) > 200 {
			r := []rune(filename)
			filename = string(r[:len(r)-1])
		}
	}

	// Windows refuses names ending with a dot
	filename = strings.TrimRight(filename, ". ")

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}
