// Package marker wraps the first occurrence of a highlight inside a context
// fragment with an emphasis tag.
package marker

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTag is the element used to wrap matches.
const DefaultTag = "mark"

// Strategy looks for a highlight in a fragment. Mark returns the rewritten
// fragment and true when it found the highlight.
type Strategy interface {
	Name() string
	Mark(fragment, highlight, tag string) (string, bool, error)
}

// Tolerant matches case-insensitively and lets any whitespace run in the
// highlight match any whitespace run (newlines included) in the fragment.
type Tolerant struct{}

func (Tolerant) Name() string { return "tolerant" }

func (Tolerant) Mark(fragment, highlight, tag string) (string, bool, error) {
	words := strings.Fields(highlight)
	if len(words) == 0 {
		return fragment, false, fmt.Errorf("empty highlight pattern")
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	re, err := regexp.Compile(`(?is)` + strings.Join(words, `\s+`))
	if err != nil {
		return fragment, false, fmt.Errorf("failed to compile highlight pattern: %w", err)
	}

	loc := re.FindStringIndex(fragment)
	if loc == nil {
		return fragment, false, nil
	}
	return wrap(fragment, loc[0], loc[1], tag), true, nil
}

// Exact matches the highlight as a case-sensitive substring.
type Exact struct{}

func (Exact) Name() string { return "exact" }

func (Exact) Mark(fragment, highlight, tag string) (string, bool, error) {
	if strings.TrimSpace(highlight) == "" {
		return fragment, false, nil
	}
	i := strings.Index(fragment, highlight)
	if i < 0 {
		return fragment, false, nil
	}
	return wrap(fragment, i, i+len(highlight), tag), true, nil
}

func wrap(s string, start, end int, tag string) string {
	return s[:start] + "<" + tag + ">" + s[start:end] + "</" + tag + ">" + s[end:]
}

// Marker applies strategies in order until one marks the fragment.
type Marker struct {
	Tag        string
	Strategies []Strategy
	// OnError, when set, receives strategy failures.
	OnError func(strategy string, err error)
}

// New returns a Marker using the tolerant strategy with exact matching as
// the fallback.
func New() *Marker {
	return &Marker{
		Tag:        DefaultTag,
		Strategies: []Strategy{Tolerant{}, Exact{}},
	}
}

// Mark returns fragment with the first occurrence of highlight wrapped in
// the marker tag. The fragment is returned unchanged when nothing matches.
func (m *Marker) Mark(fragment, highlight string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.report("panic", fmt.Errorf("%v", r))
			out = fragment
		}
	}()

	tag := m.Tag
	if tag == "" {
		tag = DefaultTag
	}

	for _, s := range m.Strategies {
		marked, ok, err := s.Mark(fragment, highlight, tag)
		if err != nil {
			m.report(s.Name(), err)
			continue
		}
		if ok {
			return marked
		}
	}
	return fragment
}

func (m *Marker) report(strategy string, err error) {
	if m.OnError != nil {
		m.OnError(strategy, err)
	}
}
