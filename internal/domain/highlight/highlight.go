// Package highlight builds review excerpts with query terms marked.
//
// The excerpt is a list of spans rather than a marked-up string, so callers
// decide how a match is rendered (HTML <mark>, terminal brackets) and escaping
// stays with the renderer.
package highlight

import (
	"regexp"
	"sort"
	"strings"
)

// NoText is the excerpt shown for a review without body text.
const NoText = "No review text available."

const (
	sentenceSep     = ". "
	fallbackCount   = 2
	fallbackPostfix = "."
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Span is a run of excerpt text. Match marks a query term occurrence.
type Span struct {
	Text  string
	Match bool
}

// Excerpt is the rendered-agnostic result of Build.
type Excerpt struct {
	Spans []Span
	// Highlighted reports whether any sentence matched the query.
	Highlighted bool
}

// Build selects the sentences of text that contain any query token and marks every
// case-insensitive occurrence of every token. Without matches it falls back to the
// first two sentences, unmarked.
func Build(text, query string) Excerpt {
	if text == "" {
		return plain(NoText)
	}
	if query == "" {
		return plain(text)
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return plain(text)
	}

	tokens := strings.Fields(strings.ToLower(query))

	var relevant []string
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), tokens) {
			relevant = append(relevant, s)
		}
	}

	if len(relevant) == 0 {
		n := min(fallbackCount, len(sentences))
		return plain(strings.Join(sentences[:n], sentenceSep) + fallbackPostfix)
	}

	pattern, err := tokenPattern(tokens)
	if err != nil {
		return plain(text)
	}

	ex := Excerpt{Highlighted: true}
	for i, s := range relevant {
		if i > 0 {
			ex.Spans = appendText(ex.Spans, sentenceSep)
		}
		ex.Spans = appendMarked(ex.Spans, s, pattern)
	}
	return ex
}

// String returns the excerpt text without markers.
func (e Excerpt) String() string {
	return e.Render("", "")
}

// Render wraps every matched span in open/close.
func (e Excerpt) Render(open, closing string) string {
	var b strings.Builder
	for _, sp := range e.Spans {
		if sp.Match {
			b.WriteString(open)
			b.WriteString(sp.Text)
			b.WriteString(closing)
			continue
		}
		b.WriteString(sp.Text)
	}
	return b.String()
}

func plain(text string) Excerpt {
	return Excerpt{Spans: []Span{{Text: text}}}
}

func splitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// tokenPattern compiles a single case-insensitive alternation of the tokens.
// Longer tokens come first so "party" wins over "part" at the same position.
func tokenPattern(tokens []string) (*regexp.Regexp, error) {
	uniq := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, t)
	}
	sort.SliceStable(uniq, func(i, j int) bool { return len(uniq[i]) > len(uniq[j]) })

	quoted := make([]string, len(uniq))
	for i, t := range uniq {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)`) //nolint:wrapcheck // caller falls back
}

func appendMarked(spans []Span, s string, pattern *regexp.Regexp) []Span {
	last := 0
	for _, loc := range pattern.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			spans = appendText(spans, s[last:loc[0]])
		}
		spans = append(spans, Span{Text: s[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(s) {
		spans = appendText(spans, s[last:])
	}
	return spans
}

// appendText merges adjacent unmatched text into one span.
func appendText(spans []Span, text string) []Span {
	if n := len(spans); n > 0 && !spans[n-1].Match {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Text: text})
}
