package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/pastehtml/internal/logger"
	"github.com/jmylchreest/pastehtml/pkg/normalize"
)

var sniffCmd = &cobra.Command{
	Use:   "sniff [files...]",
	Short: "Report where documents appear to come from",
	Long: `Print the origin each document would be given by the normalizer:
html, spreadsheet, markdown or text. Spreadsheet exports also show the
detection rule that matched.

Examples:
  pastehtml sniff export.html notes.md
  pbpaste | pastehtml sniff`,
	RunE: runSniff,
}

func init() {
	rootCmd.AddCommand(sniffCmd)
	sniffCmd.Flags().String("mime", "", "input type: html, markdown, text (default: detect)")
}

func runSniff(cmd *cobra.Command, args []string) error {
	mime, _ := cmd.Flags().GetString("mime")
	docs, err := readInputs(context.Background(), args, mime, cmd.InOrStdin(), newFetcher(viper.GetDuration("timeout"), 0))
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return err
	}

	n, err := normalize.New(normalize.DefaultConfig())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, doc := range docs {
		origin, rule, err := n.Detect(doc)
		if err != nil {
			failed++
			logger.Error("detection failed", "document", doc.Name, "error", err)
			continue
		}
		if rule == "" {
			rule = "-"
		}
		fmt.Fprintf(out, "%-32s %-12s %s\n", doc.Name, origin, rule)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be sniffed", failed, len(docs))
	}
	return nil
}
