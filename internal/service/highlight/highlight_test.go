package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/readalong/internal/domain"
	"github.com/heartmarshall/readalong/internal/service/tokenizer"
)

func spans(literals ...string) []domain.Span {
	out := make([]domain.Span, len(literals))
	for i, l := range literals {
		out[i] = domain.Span{Literal: l, FirstSeenOrder: i + 1}
	}
	return out
}

func marked(segments []Segment) []string {
	var out []string
	for _, s := range segments {
		if s.Marked {
			out = append(out, s.Text)
		}
	}
	return out
}

func TestRender_PhraseTakesPriority(t *testing.T) {
	t.Parallel()

	text := "Человек идёт по улице."
	tokens := tokenizer.Tokenize(text)

	segs := Render(tokens, spans("улице", "по улице"), "")

	assert.Equal(t, []string{"по улице"}, marked(segs))
	assert.Equal(t, text, Join(segs))
	for _, s := range segs {
		if s.Marked {
			assert.Equal(t, "по улице", s.Literal)
		}
	}
}

func TestRender_OrderOfSelectionDoesNotMatter(t *testing.T) {
	t.Parallel()

	tokens := tokenizer.Tokenize("Человек идёт по улице.")

	a := Render(tokens, spans("по улице", "улице"), "")
	b := Render(tokens, spans("улице", "по улице"), "")

	assert.Equal(t, marked(a), marked(b))
}

func TestRender_WordRespectsBoundaries(t *testing.T) {
	t.Parallel()

	text := "Кот и котёнок. Кот спит."
	tokens := tokenizer.Tokenize(text)

	segs := Render(tokens, spans("Кот", "и"), "")

	assert.Equal(t, []string{"Кот", "и", "Кот"}, marked(segs))
	assert.Equal(t, text, Join(segs))
}

func TestRender_AllOccurrencesMarked(t *testing.T) {
	t.Parallel()

	tokens := tokenizer.Tokenize("да, да, да!")

	segs := Render(tokens, spans("да"), "")

	assert.Len(t, marked(segs), 3)
}

func TestRender_PhraseSubstringCanCutTokens(t *testing.T) {
	t.Parallel()

	text := "Xпо улицеY"
	tokens := tokenizer.Tokenize(text)

	segs := Render(tokens, spans("по улице"), "")

	assert.Equal(t, []string{"по улице"}, marked(segs))
	assert.Equal(t, text, Join(segs))
	require.Len(t, segs, 3)
	assert.Equal(t, "X", segs[0].Text)
	assert.Equal(t, "Y", segs[2].Text)
}

func TestRender_PreservesPunctuationAndOffsets(t *testing.T) {
	t.Parallel()

	text := "«Привет», — сказал он.\n"
	tokens := tokenizer.Tokenize(text)

	segs := Render(tokens, spans("сказал"), "сказал")

	assert.Equal(t, text, Join(segs))
	for _, s := range segs {
		assert.Equal(t, s.Text, text[s.Start:s.End])
		if s.Marked {
			assert.True(t, s.Active)
		}
	}
}

func TestRender_NoSpans(t *testing.T) {
	t.Parallel()

	tokens := tokenizer.Tokenize("Человек идёт.")

	segs := Render(tokens, nil, "")

	require.Len(t, segs, len(tokens))
	for i, s := range segs {
		assert.False(t, s.Marked)
		assert.Equal(t, tokens[i].Text, s.Text)
		assert.Equal(t, tokens[i].Kind, s.Kind)
	}
}

func TestRender_LiteralAbsent(t *testing.T) {
	t.Parallel()

	tokens := tokenizer.Tokenize("Человек идёт.")

	segs := Render(tokens, spans("собака"), "собака")

	assert.Empty(t, marked(segs))
}

func TestRender_EmptyText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Render(nil, spans("улице"), ""))
}

func TestRender_SameLengthTieUsesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	// "ab c" and "b cd" overlap and have equal length; the earlier selection wins.
	tokens := tokenizer.Tokenize("ab cd")

	segs := Render(tokens, []domain.Span{
		{Literal: "b cd", FirstSeenOrder: 1},
		{Literal: "ab c", FirstSeenOrder: 2},
	}, "")

	assert.Equal(t, []string{"b cd"}, marked(segs))
}

func TestRender_PhraseAcrossWhitespaceRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "line break", text: "Человек идёт по\nулице.", want: "по\nулице"},
		{name: "double space", text: "Человек идёт по  улице.", want: "по  улице"},
		{name: "tab and newline", text: "Человек идёт по\t\nулице.", want: "по\t\nулице"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens := tokenizer.Tokenize(tt.text)
			segs := Render(tokens, spans("улице", "по улице"), "по улице")

			assert.Equal(t, []string{tt.want}, marked(segs))
			assert.Equal(t, tt.text, Join(segs))
			assert.Equal(t, 1, Occurrences(tokens, "по улице"))
		})
	}
}

func TestRender_PhraseNeedsWhitespace(t *testing.T) {
	t.Parallel()

	tokens := tokenizer.Tokenize("Человек идёт поулице.")

	assert.Equal(t, 0, Occurrences(tokens, "по улице"))
}

func TestOccurrences(t *testing.T) {
	t.Parallel()

	tokens := tokenizer.Tokenize("Кот и котёнок. Кот спит. по улице, по улице")

	assert.Equal(t, 2, Occurrences(tokens, "Кот"))
	assert.Equal(t, 0, Occurrences(tokens, "от"))
	assert.Equal(t, 2, Occurrences(tokens, "по улице"))
	assert.Equal(t, 0, Occurrences(tokens, ""))
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	tokens := tokenizer.Tokenize("Он <b> идёт по улице.")

	out := RenderHTML(Render(tokens, spans("по улице"), "по улице"))

	assert.Contains(t, out, `<mark data-literal="по улице" class="active">по улице</mark>`)
	assert.Contains(t, out, "&lt;b&gt;")
	assert.Contains(t, out, `<a href="?w=`)
	assert.False(t, strings.Contains(out, "<b>"))
}
