package locator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestWordWindow(t *testing.T) {
	t.Run("keeps context words around the highlight", func(t *testing.T) {
		words := numberedWords(50)
		blocks := []Block{{Text: strings.Join(words, " ")}}

		window, ok := WordWindow(blocks, 0, "w20 w21 w22", 5, DefaultAnchorWords)

		assert.True(t, ok)
		assert.Equal(t, "... "+strings.Join(words[15:28], " ")+" ...", window)
	})

	t.Run("clamps at sequence bounds", func(t *testing.T) {
		words := numberedWords(10)
		blocks := []Block{{Text: strings.Join(words, " ")}}

		window, ok := WordWindow(blocks, 0, "w1 w2 w3", 30, DefaultAnchorWords)

		assert.True(t, ok)
		assert.Equal(t, "... "+strings.Join(words, " ")+" ...", window)
	})

	t.Run("spans neighbouring blocks only", func(t *testing.T) {
		blocks := []Block{
			{Text: "far away"},
			{Text: "before block"},
			{Text: "the highlighted words here"},
			{Text: "after block"},
			{Text: "also far"},
		}

		window, ok := WordWindow(blocks, 2, "the highlighted words", 10, DefaultAnchorWords)

		assert.True(t, ok)
		assert.Equal(t, "... before block the highlighted words here after block ...", window)
	})

	t.Run("zero context words returns the highlight span", func(t *testing.T) {
		blocks := []Block{{Text: "one two three four five"}}

		window, ok := WordWindow(blocks, 0, "two three four", 0, DefaultAnchorWords)

		assert.True(t, ok)
		assert.Equal(t, "... two three four ...", window)
	})

	t.Run("short highlight cannot anchor", func(t *testing.T) {
		blocks := []Block{{Text: "one two three"}}

		_, ok := WordWindow(blocks, 0, "two three", 5, DefaultAnchorWords)

		assert.False(t, ok)
	})

	t.Run("anchor split by markup does not align", func(t *testing.T) {
		blocks := []Block{{Text: "one two-three four"}}

		_, ok := WordWindow(blocks, 0, "two three four", 5, DefaultAnchorWords)

		assert.False(t, ok)
	})
}

func TestParagraphWindow(t *testing.T) {
	blocks := make([]Block, 5)
	for i := range blocks {
		blocks[i] = Block{HTML: fmt.Sprintf("<p>Block %d</p>", i)}
	}

	t.Run("one paragraph either side", func(t *testing.T) {
		assert.Equal(t, "<p>Block 1</p><p>Block 2</p><p>Block 3</p>", ParagraphWindow(blocks, 2, 1))
	})

	t.Run("zero is treated as one", func(t *testing.T) {
		assert.Equal(t, "<p>Block 1</p><p>Block 2</p><p>Block 3</p>", ParagraphWindow(blocks, 2, 0))
	})

	t.Run("clamps at the start", func(t *testing.T) {
		assert.Equal(t, "<p>Block 0</p><p>Block 1</p><p>Block 2</p>", ParagraphWindow(blocks, 0, 2))
	})

	t.Run("clamps at the end", func(t *testing.T) {
		assert.Equal(t, "<p>Block 3</p><p>Block 4</p>", ParagraphWindow(blocks, 4, 1))
	})
}
