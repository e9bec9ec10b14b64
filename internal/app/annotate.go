package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/heartmarshall/readalong/internal/config"
	"github.com/heartmarshall/readalong/internal/service/highlight"
	"github.com/heartmarshall/readalong/internal/session"
)

// AnnotateRequest is one offline annotation pass over a text.
type AnnotateRequest struct {
	Text string
	// Select lists literals clicked in order.
	Select []string
	// Search lists search queries run after the selections.
	Search []string
	// CSV receives the exported summary when non-nil.
	CSV io.Writer
}

// Annotate runs a single session over req without the HTTP surface and
// writes the marked text, the summary and any lookup warnings to out.
func Annotate(ctx context.Context, cfg *config.Config, logger *slog.Logger, req AnnotateRequest, out io.Writer) error {
	comps, err := NewComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	s := comps.SessionFactory(cfg, logger)("annotate")
	return annotate(ctx, s, req, out)
}

func annotate(ctx context.Context, s *session.Session, req AnnotateRequest, out io.Writer) error {
	if _, err := s.SetText(req.Text); err != nil {
		return fmt.Errorf("set text: %w", err)
	}

	for _, literal := range req.Select {
		if _, err := s.Select(ctx, literal); err != nil {
			return fmt.Errorf("select %q: %w", literal, err)
		}
	}
	for _, query := range req.Search {
		res, err := s.Search(ctx, query)
		if err != nil {
			return fmt.Errorf("search %q: %w", query, err)
		}
		if res.Occurrences == 0 {
			fmt.Fprintf(out, "note: %q does not occur in the text\n", res.Span.Literal)
		}
	}

	fmt.Fprintln(out, markText(s.Segments()))
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range s.Rows() {
		fmt.Fprintf(tw, "%s\t%s\n", row.CanonicalForm, row.Meaning)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	for _, span := range s.Spans() {
		d, err := s.Detail(span.Literal)
		if err != nil || d.Record == nil || !d.Record.IsError() {
			continue
		}
		fmt.Fprintf(out, "warning: %s: %s\n", span.Literal, d.Record.ErrorKind.Message())
	}

	if req.CSV != nil {
		if err := s.Export(req.CSV); err != nil {
			return err
		}
	}
	return nil
}

// markText renders segments as plain text with selected occurrences in
// brackets and the active one in double brackets.
func markText(segments []highlight.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch {
		case seg.Active:
			b.WriteString("[[" + seg.Text + "]]")
		case seg.Marked:
			b.WriteString("[" + seg.Text + "]")
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
