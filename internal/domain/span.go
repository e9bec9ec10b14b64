package domain

// Span is a literal the user selected, either a single word or a phrase.
type Span struct {
	Literal        string
	FirstSeenOrder int
}

// CanonicalForm is the dictionary key a literal normalizes to.
type CanonicalForm struct {
	Lemma    string
	Category Category
}

// PhraseForm returns the canonical form of a multi-word literal.
func PhraseForm(literal string) CanonicalForm {
	return CanonicalForm{Lemma: literal, Category: CategoryPhrase}
}

// UnknownForm returns the fallback canonical form used when normalization fails.
func UnknownForm(literal string) CanonicalForm {
	return CanonicalForm{Lemma: literal, Category: CategoryUnknown}
}
