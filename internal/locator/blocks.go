package locator

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/mrlokans/kobo-exporter/internal/utils"
)

// blockSelector lists the structural elements a highlight can live in.
const blockSelector = "p, div, li, blockquote, h1, h2, h3"

// Block is one structural element of a chapter, in document order.
type Block struct {
	Tag string
	// HTML is the element's original outer markup.
	HTML string
	// Text is the element's text with whitespace collapsed.
	Text string
}

// ExtractBlocks parses markup and returns its structural blocks in
// depth-first document order. Comments are removed first so they never
// reach the output or the matching.
func ExtractBlocks(markup string) ([]Block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	for _, n := range doc.Nodes {
		removeComments(n)
	}

	var (
		blocks    []Block
		renderErr error
	)
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if renderErr != nil {
			return
		}
		outer, err := goquery.OuterHtml(s)
		if err != nil {
			renderErr = fmt.Errorf("failed to render <%s>: %w", goquery.NodeName(s), err)
			return
		}
		blocks = append(blocks, Block{
			Tag:  goquery.NodeName(s),
			HTML: outer,
			Text: utils.NormalizeWhitespace(s.Text()),
		})
	})
	if renderErr != nil {
		return nil, renderErr
	}

	return blocks, nil
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

// FindBlock returns the index of the first block whose text contains
// prefix, or -1.
func FindBlock(blocks []Block, prefix string) int {
	for i, b := range blocks {
		if strings.Contains(b.Text, prefix) {
			return i
		}
	}
	return -1
}
