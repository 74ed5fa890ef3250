// Package locator finds a highlight inside its source e-book and returns
// the surrounding reading context.
//
// Two context shapes are produced. In word mode the context is plain text:
// a window of words around the highlight, taken from the matching block and
// its neighbours. In paragraph mode it is the original markup of the
// matching block and a number of blocks around it. Word mode falls back to
// paragraph mode when the highlight cannot be anchored word by word.
//
// Locate never fails. A missing book yields SourceUnavailable; anything
// else that goes wrong yields the raw highlight text.
package locator

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/kobo-exporter/internal/archive"
	"github.com/mrlokans/kobo-exporter/internal/utils"
)

// SourceUnavailable is returned when the book file is missing or unreadable.
const SourceUnavailable = "<em>[Source file missing/encrypted]</em>"

const (
	// DefaultPrefixLength is how many leading characters of the normalized
	// highlight must occur in a block for it to be the match.
	DefaultPrefixLength = 30
	// DefaultAnchorWords is how many leading highlight words word mode
	// aligns on.
	DefaultAnchorWords = 3
)

// Options selects and sizes the context window.
type Options struct {
	ContextWords      int
	ContextParagraphs int
	PrefixLength      int
	AnchorWords       int
}

// WordMode reports whether a plain-text word window is requested.
func (o Options) WordMode() bool {
	return o.ContextParagraphs == 0
}

type Locator struct {
	opts   Options
	open   archive.Opener
	logger *zap.Logger
}

// New creates a Locator. A nil logger discards diagnostics.
func New(opts Options, logger *zap.Logger) *Locator {
	if opts.PrefixLength <= 0 {
		opts.PrefixLength = DefaultPrefixLength
	}
	if opts.AnchorWords <= 0 {
		opts.AnchorWords = DefaultAnchorWords
	}
	if opts.ContextWords < 0 {
		opts.ContextWords = 0
	}
	if opts.ContextParagraphs < 0 {
		opts.ContextParagraphs = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		opts:   opts,
		open:   archive.Open,
		logger: logger,
	}
}

// SetOpener replaces the archive opener.
func (l *Locator) SetOpener(open archive.Opener) {
	l.open = open
}

// Options returns the effective options.
func (l *Locator) Options() Options {
	return l.opts
}

// Locate returns the context for highlight inside the book at archivePath.
// contentID is the Kobo locator of the chapter; book labels diagnostics.
func (l *Locator) Locate(archivePath, contentID, highlight, book string) string {
	if archivePath == "" {
		l.logger.Info("source file not resolved", zap.String("book", book))
		return SourceUnavailable
	}
	if _, err := os.Stat(archivePath); err != nil {
		l.logger.Info("source file missing", zap.String("book", book), zap.String("path", archivePath))
		return SourceUnavailable
	}

	window, err := l.extract(archivePath, contentID, highlight, book)
	if err != nil {
		l.logger.Error("context extraction failed", zap.String("book", book), zap.Error(err))
		return highlight
	}
	return window
}

func (l *Locator) extract(archivePath, contentID, highlight, book string) (window string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading %s: %v", archivePath, r)
		}
	}()

	target := utils.NormalizeWhitespace(highlight)
	if target == "" {
		return highlight, nil
	}

	inner := InnerPath(contentID)
	if inner == "" {
		return highlight, nil
	}

	a, err := l.open(archivePath)
	if err != nil {
		return "", err
	}
	defer a.Close()

	name, ok := archive.FindEntry(a, inner)
	if !ok {
		l.logger.Debug("chapter not found in archive", zap.String("book", book), zap.String("locator", inner))
		return highlight, nil
	}

	raw, err := a.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	blocks, err := ExtractBlocks(Decode(raw))
	if err != nil {
		return "", err
	}

	idx := FindBlock(blocks, utils.Prefix(target, l.opts.PrefixLength))
	if idx < 0 {
		l.logger.Debug("highlight not found in chapter", zap.String("book", book), zap.String("chapter", name))
		return highlight, nil
	}

	if l.opts.WordMode() {
		if w, ok := WordWindow(blocks, idx, target, l.opts.ContextWords, l.opts.AnchorWords); ok {
			return w, nil
		}
		l.logger.Debug("word anchor not found, using paragraph context", zap.String("book", book))
	}

	return ParagraphWindow(blocks, idx, l.opts.ContextParagraphs), nil
}
