package domain

// Token is a maximal run of word or non-word characters of the raw text.
// Start and End are byte offsets into the raw text, End exclusive.
type Token struct {
	Text  string
	Kind  TokenKind
	Start int
	End   int
}

// IsWord reports whether the token is a word token.
func (t Token) IsWord() bool { return t.Kind == TokenKindWord }
