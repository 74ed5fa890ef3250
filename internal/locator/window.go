package locator

import "strings"

const ellipsis = "..."

// WordWindow builds a plain-text window from the matched block and its
// immediate neighbours. It anchors on the first anchorWords words of the
// normalized highlight and keeps contextWords words on either side of the
// whole highlight. ok is false when the highlight is shorter than the
// anchor or the anchor does not occur as consecutive words.
func WordWindow(blocks []Block, idx int, highlight string, contextWords, anchorWords int) (string, bool) {
	target := strings.Fields(highlight)
	if anchorWords <= 0 || len(target) < anchorWords {
		return "", false
	}

	start := max(0, idx-1)
	end := min(len(blocks), idx+2)

	var words []string
	for _, b := range blocks[start:end] {
		words = append(words, strings.Fields(b.Text)...)
	}

	pos := indexOfRun(words, target[:anchorWords])
	if pos < 0 {
		return "", false
	}

	contextWords = max(0, contextWords)
	from := max(0, pos-contextWords)
	to := min(len(words), pos+len(target)+contextWords)

	return ellipsis + " " + strings.Join(words[from:to], " ") + " " + ellipsis, true
}

// ParagraphWindow returns the original markup of n blocks on each side of
// idx, plus the block itself, in document order. n is at least 1.
func ParagraphWindow(blocks []Block, idx, n int) string {
	n = max(1, n)
	start := max(0, idx-n)
	end := min(len(blocks), idx+n+1)

	var sb strings.Builder
	for _, b := range blocks[start:end] {
		sb.WriteString(b.HTML)
	}
	return sb.String()
}

func indexOfRun(words, run []string) int {
	for i := 0; i+len(run) <= len(words); i++ {
		match := true
		for j, w := range run {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
