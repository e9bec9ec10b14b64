// Package summary aggregates the selection into study-list rows and exports
// them as a delimited table.
package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/heartmarshall/readalong/internal/domain"
)

// MaxRowMeanings is the number of meanings joined into a row's meaning.
const MaxRowMeanings = 2

// DefaultDelimiter separates exported columns.
const DefaultDelimiter = ','

// bom is the UTF-8 byte-order mark written before the table.
const bom = "\ufeff"

// Header is the exported column header.
var Header = []string{"canonical form", "meaning"}

// Row is one line of the study list.
type Row struct {
	CanonicalForm string
	Meaning       string
	Lemma         string
	Category      domain.Category
	Literal       string
}

// CanonicalFunc returns the canonical form of a selected literal.
type CanonicalFunc func(literal string) domain.CanonicalForm

// LookupFunc returns the cached record for a lemma.
type LookupFunc func(lemma string) (domain.EnrichmentRecord, bool)

// Summarize builds rows for spans in first-seen order. Only Fresh records
// produce a row, and only the first span of each lemma is emitted.
func Summarize(spans []domain.Span, canonical CanonicalFunc, lookup LookupFunc) []Row {
	seen := make(map[string]bool, len(spans))
	rows := make([]Row, 0, len(spans))

	for _, sp := range sortedByFirstSeen(spans) {
		form := canonical(sp.Literal)
		key := domain.LemmaKey(form.Lemma)
		if seen[key] {
			continue
		}

		rec, ok := lookup(form.Lemma)
		if !ok || !rec.IsFresh() {
			continue
		}
		seen[key] = true

		rows = append(rows, Row{
			CanonicalForm: rec.HeadWord(),
			Meaning:       ShortMeaning(rec.Meanings),
			Lemma:         rec.Lemma,
			Category:      rec.Category,
			Literal:       sp.Literal,
		})
	}
	return rows
}

// ShortMeaning joins the first meanings into a representative meaning.
func ShortMeaning(meanings []string) string {
	if len(meanings) > MaxRowMeanings {
		meanings = meanings[:MaxRowMeanings]
	}
	return strings.Join(meanings, ", ")
}

// WriteCSV writes rows as a UTF-8 delimited table with a byte-order mark and
// a header line.
func WriteCSV(w io.Writer, rows []Row, delimiter rune) error {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.CanonicalForm, r.Meaning}); err != nil {
			return fmt.Errorf("write row %q: %w", r.CanonicalForm, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func sortedByFirstSeen(spans []domain.Span) []domain.Span {
	out := make([]domain.Span, len(spans))
	copy(out, spans)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FirstSeenOrder < out[j].FirstSeenOrder })
	return out
}
