package provider

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/heartmarshall/readalong/internal/domain"
)

// lexicalPayload is the JSON contract every lexical backend must satisfy.
type lexicalPayload struct {
	Meanings   []string           `json:"ko_meanings"`
	Examples   []examplePayload   `json:"examples"`
	AspectPair *aspectPairPayload `json:"aspect_pair,omitempty"`
}

type examplePayload struct {
	Ru string `json:"ru"`
	Ko string `json:"ko"`
}

type aspectPairPayload struct {
	Imp  string `json:"imp"`
	Perf string `json:"perf"`
}

// ParseLexicalResponse extracts the JSON object from raw and decodes the
// lexical JSON contract. Any response that does not satisfy the contract is a
// *MalformedResponseError carrying raw. The aspect pair is required for verbs
// and discarded for every other category.
func ParseLexicalResponse(raw string, category domain.Category) (*LexicalResult, error) {
	body := ExtractJSONObject(raw)
	if body == "" {
		return nil, &MalformedResponseError{Raw: raw, Reason: "empty response"}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var p lexicalPayload
	if err := dec.Decode(&p); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Reason: "decode json: " + err.Error()}
	}
	if dec.More() {
		return nil, &MalformedResponseError{Raw: raw, Reason: "trailing data after json object"}
	}
	if p.Meanings == nil {
		return nil, &MalformedResponseError{Raw: raw, Reason: "ko_meanings missing"}
	}

	res := &LexicalResult{
		Meanings: cleanStrings(p.Meanings),
		Examples: make([]ExampleResult, 0, len(p.Examples)),
		Raw:      raw,
	}
	for _, ex := range p.Examples {
		src, dst := strings.TrimSpace(ex.Ru), strings.TrimSpace(ex.Ko)
		if src == "" {
			continue
		}
		res.Examples = append(res.Examples, ExampleResult{Source: src, Target: dst})
	}

	if category.HasAspectPair() {
		if p.AspectPair == nil || strings.TrimSpace(p.AspectPair.Imp) == "" || strings.TrimSpace(p.AspectPair.Perf) == "" {
			return nil, &MalformedResponseError{Raw: raw, Reason: "aspect_pair required for verbs"}
		}
		res.AspectPair = &AspectPairResult{
			Imperfective: strings.TrimSpace(p.AspectPair.Imp),
			Perfective:   strings.TrimSpace(p.AspectPair.Perf),
		}
	}

	return res, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence and whitespace.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string ("json", "JSON", ...) up to the first newline.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject strips a code fence from s and, when prose surrounds the
// payload, narrows it to the span from the first '{' to the last '}'.
func ExtractJSONObject(s string) string {
	s = StripCodeFence(s)
	if strings.HasPrefix(s, "{") {
		return s
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
