package provider

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/readalong/internal/domain"
)

// BuildLexicalPrompt creates the LLM prompt for one lexical lookup.
func BuildLexicalPrompt(req LexicalRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a Russian-Korean dictionary editor helping a Korean learner read Russian text.

The learner selected %q in a Russian text. Its dictionary form is %q (%s).

Output ONLY a valid JSON object matching this exact schema:
{
  "ko_meanings": ["<Korean meaning 1>", "<Korean meaning 2>"],
  "examples": [
    {"ru": "<natural Russian example sentence>", "ko": "<Korean translation>"}
  ]`, req.Literal, req.Lemma, describeCategory(req.Category))

	if req.Category.HasAspectPair() {
		b.WriteString(`,
  "aspect_pair": {"imp": "<imperfective infinitive>", "perf": "<perfective infinitive>"}`)
	}

	fmt.Fprintf(&b, `
}

Rules:
- Give at most %d short Korean meanings, most common first
- Give at most %d example sentences using the dictionary form or its inflections
`, domain.MaxMeanings, domain.MaxExamples)

	if req.Category.HasAspectPair() {
		b.WriteString("- aspect_pair is required: give the imperfective and perfective infinitives\n")
	}
	if req.Category == domain.CategoryPhrase {
		b.WriteString("- Treat the selection as a fixed phrase and translate it as a whole\n")
	}
	b.WriteString("- Output ONLY the JSON, no markdown, no explanations")

	return b.String()
}

func describeCategory(c domain.Category) string {
	switch c {
	case domain.CategoryNoun:
		return "noun"
	case domain.CategoryVerb:
		return "verb"
	case domain.CategoryAdjective:
		return "adjective"
	case domain.CategoryAdverb:
		return "adverb"
	case domain.CategoryPhrase:
		return "phrase"
	case domain.CategoryOther:
		return "function word or other part of speech"
	case domain.CategoryUnknown:
		return "part of speech unknown"
	}
	return "part of speech unknown"
}
