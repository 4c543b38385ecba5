package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/pastehtml/internal/logger"
	"github.com/jmylchreest/pastehtml/internal/output"
	"github.com/jmylchreest/pastehtml/pkg/normalize"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file]",
	Short: "Compare presets on one document",
	Long: `Normalize a single document with every preset and print a table of
output size, reduction and time. Use --steps to break time down per step
or --report for machine readable output.

Examples:
  pastehtml compare paste.html
  pastehtml compare --steps --mime markdown notes.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	flags := compareCmd.Flags()
	flags.String("mime", "", "input type: html, markdown, text (default: detect)")
	flags.Bool("steps", false, "show per-step timings")
	flags.String("report", "", "emit reports instead of a table: json, jsonl, yaml, text")
}

func runCompare(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	mime, _ := flags.GetString("mime")
	docs, err := readInputs(context.Background(), args, mime, cmd.InOrStdin(), newFetcher(viper.GetDuration("timeout"), 0))
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return err
	}
	doc := docs[0]

	var reports output.Writer
	if name, _ := flags.GetString("report"); name != "" {
		format, err := output.ParseFormat(name)
		if err != nil {
			return err
		}
		if reports, err = output.NewWriter(cmd.OutOrStdout(), format); err != nil {
			return err
		}
		defer func() { _ = reports.Close() }()
	}

	showSteps, _ := flags.GetBool("steps")
	out := cmd.OutOrStdout()

	if reports == nil {
		fmt.Fprintf(out, "\n=== Preset Comparison for %s ===\n", doc.Name)
		fmt.Fprintf(out, "Input size: %s\n\n", humanize.Bytes(uint64(len(doc.Content))))
		fmt.Fprintf(out, "%-12s %-12s %10s %8s %8s %10s\n", "Preset", "Origin", "Output", "Reduce%", "Warn", "Time")
		fmt.Fprintf(out, "%-12s %-12s %10s %8s %8s %10s\n", "------", "------", "------", "-------", "----", "----")
	}

	for _, name := range normalize.Presets() {
		cfg, err := normalize.PresetByName(name)
		if err != nil {
			return err
		}
		n, err := normalize.New(cfg)
		if err != nil {
			return err
		}
		res := n.Normalize(doc)

		if reports != nil {
			if err := reports.Write(output.NewReport(doc.Name, name, res, false)); err != nil {
				return err
			}
			continue
		}

		if res.Error != nil {
			fmt.Fprintf(out, "%-12s error: %v\n", name, res.Error)
			continue
		}
		s := res.Stats
		fmt.Fprintf(out, "%-12s %-12s %10s %7.1f%% %8d %10v\n",
			name,
			s.Origin,
			humanize.Bytes(uint64(s.OutputBytes)),
			s.ReductionPercent(),
			len(res.Warnings),
			s.TotalDuration.Round(time.Microsecond))

		if showSteps {
			for _, step := range s.Steps() {
				fmt.Fprintf(out, "  %-18s %v\n", step, s.StepDurations[step].Round(time.Microsecond))
			}
		}
	}

	if reports == nil {
		fmt.Fprintln(out)
	}
	return nil
}
