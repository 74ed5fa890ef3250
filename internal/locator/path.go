package locator

import (
	"regexp"
	"strings"
)

// Kobo sometimes prefixes the fragment with an ordinal, e.g. "(3)chapter2.xhtml".
var ordinalPrefix = regexp.MustCompile(`^\(\d+\)`)

// InnerPath extracts the archive-internal file path from a Kobo content
// locator. Locators look like "<volume>#(N)<path>", "(N)<path>#<anchor>" or
// a bare "<path>".
func InnerPath(contentID string) string {
	parts := strings.Split(contentID, "#")

	inner := parts[0]
	if len(parts) > 1 {
		if p, ok := firstOrdinal(parts); ok {
			inner = p
		} else if looksLikePath(parts[1]) {
			inner = parts[1]
		}
	}

	return ordinalPrefix.ReplaceAllString(inner, "")
}

func firstOrdinal(parts []string) (string, bool) {
	for _, p := range parts {
		if ordinalPrefix.MatchString(p) {
			return p, true
		}
	}
	return "", false
}

func looksLikePath(s string) bool {
	return strings.ContainsAny(s, "./")
}
