package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBlocks(t *testing.T) {
	t.Run("keeps document order across tag types", func(t *testing.T) {
		markup := `<html><body>
			<h1>Title</h1>
			<p>First paragraph</p>
			<blockquote>Quoted</blockquote>
			<ul><li>Item one</li><li>Item two</li></ul>
			<h2>Section</h2>
			<p>Last</p>
		</body></html>`

		blocks, err := ExtractBlocks(markup)
		require.NoError(t, err)

		var texts []string
		for _, b := range blocks {
			texts = append(texts, b.Text)
		}
		assert.Equal(t, []string{"Title", "First paragraph", "Quoted", "Item one", "Item two", "Section", "Last"}, texts)
		assert.Equal(t, "h1", blocks[0].Tag)
		assert.Equal(t, "li", blocks[3].Tag)
	})

	t.Run("nested blocks come parent first", func(t *testing.T) {
		blocks, err := ExtractBlocks(`<div><p>Inner one</p><p>Inner two</p></div>`)
		require.NoError(t, err)

		require.Len(t, blocks, 3)
		assert.Equal(t, "div", blocks[0].Tag)
		assert.Equal(t, "Inner oneInner two", blocks[0].Text, "text nodes are joined without separators")
		assert.Equal(t, "Inner one", blocks[1].Text)
	})

	t.Run("normalizes whitespace in text but not markup", func(t *testing.T) {
		blocks, err := ExtractBlocks("<p class=\"body\">Line one\n   line  two</p>")
		require.NoError(t, err)

		require.Len(t, blocks, 1)
		assert.Equal(t, "Line one line two", blocks[0].Text)
		assert.Equal(t, "<p class=\"body\">Line one\n   line  two</p>", blocks[0].HTML)
	})

	t.Run("removes comments", func(t *testing.T) {
		blocks, err := ExtractBlocks(`<p>Before <!-- hidden note --> after</p><!-- between --><p>Next</p>`)
		require.NoError(t, err)

		require.Len(t, blocks, 2)
		assert.Equal(t, "Before after", blocks[0].Text)
		assert.NotContains(t, blocks[0].HTML, "hidden note")
		assert.NotContains(t, blocks[0].HTML, "<!--")
	})

	t.Run("no blocks in empty markup", func(t *testing.T) {
		blocks, err := ExtractBlocks("")
		require.NoError(t, err)
		assert.Empty(t, blocks)
	})
}

func TestFindBlock(t *testing.T) {
	blocks := []Block{
		{Text: "Nothing here"},
		{Text: "The quick brown fox jumps"},
		{Text: "The quick brown fox again"},
	}

	assert.Equal(t, 1, FindBlock(blocks, "quick brown fox"), "first block in document order wins")
	assert.Equal(t, -1, FindBlock(blocks, "lazy dog"))
}
