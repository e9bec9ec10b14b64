// Package highlight re-renders a token stream with the selected spans marked.
package highlight

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/heartmarshall/readalong/internal/domain"
	"github.com/heartmarshall/readalong/internal/service/tokenizer"
)

// Segment is a contiguous piece of the rendered text. Marked segments cover a
// whole occurrence of a selected literal; unmarked segments are (parts of)
// original tokens.
type Segment struct {
	Text    string
	Kind    domain.TokenKind
	Start   int
	End     int
	Marked  bool
	Literal string
	Active  bool
}

// Join concatenates segment texts.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

type match struct {
	start, end int
	literal    string
}

// Render marks every occurrence of the selected literals in the text the
// tokens reconstruct. Longer literals are applied first (ties by first-seen
// order) and a match never overlaps a range consumed earlier, so a selected
// phrase takes priority over a word nested inside it.
func Render(tokens []domain.Token, spans []domain.Span, active string) []Segment {
	text := tokenizer.Join(tokens)
	bounds := newBoundaries(tokens)

	ordered := make([]domain.Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(ordered[i].Literal), utf8.RuneCountInString(ordered[j].Literal)
		if li != lj {
			return li > lj
		}
		return ordered[i].FirstSeenOrder < ordered[j].FirstSeenOrder
	})

	var matches []match
	for _, sp := range ordered {
		for _, r := range find(text, sp.Literal, bounds) {
			if overlapsAny(matches, r) {
				continue
			}
			matches = append(matches, match{start: r[0], end: r[1], literal: sp.Literal})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	segments := make([]Segment, 0, len(tokens)+len(matches))
	cursor, ti := 0, 0
	for _, m := range matches {
		segments, ti = appendPlain(segments, tokens, ti, cursor, m.start)
		segments = append(segments, Segment{
			Text:    text[m.start:m.end],
			Kind:    domain.TokenKindWord,
			Start:   m.start,
			End:     m.end,
			Marked:  true,
			Literal: m.literal,
			Active:  active != "" && m.literal == active,
		})
		cursor = m.end
	}
	segments, _ = appendPlain(segments, tokens, ti, cursor, len(text))
	return segments
}

// Occurrences counts the non-overlapping occurrences of literal in the text,
// using the same boundary rules as Render.
func Occurrences(tokens []domain.Token, literal string) int {
	return len(find(tokenizer.Join(tokens), literal, newBoundaries(tokens)))
}

type boundaries struct {
	wordStart map[int]bool
	wordEnd   map[int]bool
}

func newBoundaries(tokens []domain.Token) boundaries {
	b := boundaries{wordStart: make(map[int]bool), wordEnd: make(map[int]bool)}
	for _, t := range tokens {
		if t.IsWord() {
			b.wordStart[t.Start] = true
			b.wordEnd[t.End] = true
		}
	}
	return b
}

// find returns the leftmost-first non-overlapping byte ranges of literal in
// text. A single-word literal only matches a whole Word token run. A space in
// literal matches any whitespace run in text, so a phrase still matches where
// the text breaks the line or doubles a space.
func find(text, literal string, b boundaries) [][2]int {
	if literal == "" {
		return nil
	}
	single := tokenizer.IsSingleWord(literal)
	head, _, _ := strings.Cut(literal, " ")

	var out [][2]int
	pos := 0
	for pos <= len(text)-len(head) {
		i := strings.Index(text[pos:], head)
		if i < 0 {
			break
		}
		start := pos + i
		end, ok := matchAt(text, start, literal)
		if !ok || (single && (!b.wordStart[start] || !b.wordEnd[end])) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		out = append(out, [2]int{start, end})
		pos = end
	}
	return out
}

// matchAt reports whether literal occurs in text at byte offset i and returns
// the end of the occurrence.
func matchAt(text string, i int, literal string) (int, bool) {
	for j := 0; j < len(literal); j++ {
		if literal[j] != ' ' {
			if i >= len(text) || text[i] != literal[j] {
				return 0, false
			}
			i++
			continue
		}
		n := 0
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
			n++
		}
		if n == 0 {
			return 0, false
		}
	}
	return i, true
}

func overlapsAny(matches []match, r [2]int) bool {
	for _, m := range matches {
		if r[0] < m.end && m.start < r[1] {
			return true
		}
	}
	return false
}

// appendPlain emits the unmarked range [from, to) token by token, clipping
// tokens cut by a match. ti is the index of the first token that may still
// intersect the range.
func appendPlain(segments []Segment, tokens []domain.Token, ti, from, to int) ([]Segment, int) {
	for ti < len(tokens) && tokens[ti].End <= from {
		ti++
	}
	for i := ti; i < len(tokens) && tokens[i].Start < to; i++ {
		t := tokens[i]
		s, e := max(t.Start, from), min(t.End, to)
		if s >= e {
			continue
		}
		segments = append(segments, Segment{
			Text:  t.Text[s-t.Start : e-t.Start],
			Kind:  t.Kind,
			Start: s,
			End:   e,
		})
	}
	return segments, ti
}

// RenderHTML renders segments as an HTML fragment: marked segments become
// <mark> elements and unmarked words become links that select them.
func RenderHTML(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		switch {
		case s.Marked:
			b.WriteString(`<mark data-literal="`)
			b.WriteString(html.EscapeString(s.Literal))
			b.WriteString(`"`)
			if s.Active {
				b.WriteString(` class="active"`)
			}
			b.WriteString(`>`)
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString(`</mark>`)
		case s.Kind == domain.TokenKindWord:
			b.WriteString(`<a href="?w=`)
			b.WriteString(html.EscapeString(url.QueryEscape(s.Text)))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString(`</a>`)
		default:
			b.WriteString(html.EscapeString(s.Text))
		}
	}
	return b.String()
}
