package locator

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var (
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
	xmlDeclEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*encoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)
)

// Decode turns raw chapter bytes into text. Valid UTF-8 passes through.
// Otherwise an encoding declared by the XML prolog or a byte order mark
// is honoured, and as a last resort invalid sequences are dropped.
func Decode(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}

	if label := declaredCharset(raw); label != "" {
		if enc, name := charset.Lookup(label); enc != nil && name != "utf-8" {
			if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(decoded)
			}
		}
	}

	if enc, name, certain := charset.DetermineEncoding(raw, ""); certain && name != "utf-8" {
		if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
			return string(decoded)
		}
	}

	return strings.ToValidUTF8(string(raw), "")
}

func declaredCharset(raw []byte) string {
	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	if m := xmlDeclEncoding.FindSubmatch(head); m != nil {
		return string(m[1])
	}
	return ""
}
