package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/readalong/internal/app"
)

var (
	annotateSelect []string
	annotateSearch []string
	annotateCSV    string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file]",
	Short: "Mark words in a text and print their summary",
	Long: `Reads a text from the file argument (or stdin), selects every --select
literal in order, runs every --search query, then prints the text with the
selection in brackets followed by the study list.

Example:
  readalong annotate story.txt --select идёт --search "по улице" --csv words.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringArrayVarP(&annotateSelect, "select", "s", nil, "literal to select (repeatable)")
	annotateCmd.Flags().StringArrayVarP(&annotateSearch, "search", "q", nil, "query to search (repeatable)")
	annotateCmd.Flags().StringVar(&annotateCSV, "csv", "", "write the summary table to this file")
}

func runAnnotate(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	req := app.AnnotateRequest{
		Text:   text,
		Select: annotateSelect,
		Search: annotateSearch,
	}
	if annotateCSV != "" {
		f, createErr := os.Create(annotateCSV)
		if createErr != nil {
			return fmt.Errorf("create %s: %w", annotateCSV, createErr)
		}
		defer func() {
			if cerr := closeOutput(f, annotateCSV); cerr != nil && err == nil {
				err = cerr
			}
		}()
		req.CSV = f
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return app.Annotate(ctx, cfg, app.NewLogger(cfg.Log), req, cmd.OutOrStdout())
}

func closeOutput(c io.Closer, name string) error {
	if err := c.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(b), nil
}
