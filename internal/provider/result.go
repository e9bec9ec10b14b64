package provider

import "github.com/heartmarshall/readalong/internal/domain"

// LexicalRequest is what the enrichment cache asks the lexical service for.
type LexicalRequest struct {
	Literal  string
	Lemma    string
	Category domain.Category
}

// LexicalResult is the parsed answer of a lexical enrichment service.
type LexicalResult struct {
	Meanings   []string
	Examples   []ExampleResult
	AspectPair *AspectPairResult
	Raw        string
}

// ExampleResult is a source-language example with its translation.
type ExampleResult struct {
	Source string
	Target string
}

// AspectPairResult holds the imperfective/perfective pair of a verb.
type AspectPairResult struct {
	Imperfective string
	Perfective   string
}
