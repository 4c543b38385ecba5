package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/pastehtml/internal/logger"
	"github.com/jmylchreest/pastehtml/internal/output"
	"github.com/jmylchreest/pastehtml/pkg/cleaner"
	"github.com/jmylchreest/pastehtml/pkg/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [files...]",
	Short: "Normalize pasted documents",
	Long: `Run documents through the paste pipeline and write the result.

Input is read from the named files or http(s) URLs, or stdin when none
are given. The format is taken from --mime, the file extension or
Content-Type header, or content detection.

Examples:
  # Normalize a file to stdout
  pastehtml normalize paste.html

  # Keep only structural tags and drop attributes
  pastehtml normalize --preset structural paste.html

  # Normalize many files into a directory, with a JSON report
  pastehtml normalize -o out/ --report json -c 8 pastes/*.html

  # Normalize a web page as markdown
  pastehtml normalize --format markdown https://example.com/post

  # Use a pipeline definition
  pastehtml normalize --pipeline pipeline.yaml paste.html`,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	flags := normalizeCmd.Flags()

	// Pipeline settings
	flags.String("mime", "", "input type: html, markdown, text (default: detect)")
	flags.String("preset", "default", "preset: "+strings.Join(normalize.Presets(), ", "))
	flags.String("pipeline", "", "YAML pipeline config (overrides --preset)")
	flags.String("mode", "", "sanitizer mode: keep, clean, text")
	flags.StringSlice("preserve", nil, "extra tags to preserve (can be repeated)")
	flags.StringSlice("remove", nil, "tags to unwrap before sanitizing (can be repeated)")
	flags.Bool("strip-attrs", false, "strip attributes from preserved tags")
	flags.Bool("scrub", true, "apply the final allowlist scrub")
	flags.String("max-size", "", "max input size (e.g. 512KB, 10MB, 0=unlimited)")

	// Output settings
	flags.StringP("output", "o", "", "output file, or directory for several inputs (default: stdout)")
	flags.String("format", "html", "output format: html, markdown")
	flags.Bool("pretty", false, "indent HTML output")
	flags.Bool("strip-images", false, "drop images from markdown output")
	flags.Bool("strip-links", false, "keep only link text in markdown output")
	flags.Bool("stats", false, "print a stats summary to stderr (same as --report text)")
	flags.String("report", "", "report format: json, jsonl, yaml, text")
	flags.String("report-file", "", "report destination (default: stderr)")

	flags.IntP("concurrency", "c", 4, "documents normalized in parallel")

	_ = viper.BindPFlag("preset", flags.Lookup("preset"))
	_ = viper.BindPFlag("max_size", flags.Lookup("max-size"))
	_ = viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, presetName, err := buildConfig(cmd)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	n, err := normalize.New(cfg)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	format := viper.GetString("format")
	pretty, _ := flags.GetBool("pretty")
	stripImages, _ := flags.GetBool("strip-images")
	stripLinks, _ := flags.GetBool("strip-links")
	post, ext, err := outputCleaner(format, pretty, stripImages, stripLinks)
	if err != nil {
		return err
	}

	mime, _ := flags.GetString("mime")
	docs, err := readInputs(ctx, args, mime, cmd.InOrStdin(), newFetcher(viper.GetDuration("timeout"), cfg.MaxInputBytes))
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return err
	}

	outPath, _ := flags.GetString("output")
	sink, err := newContentSink(outPath, ext, len(docs), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	reports, closeReports, err := openReportWriter(cmd)
	if err != nil {
		return err
	}
	defer closeReports()

	concurrency := viper.GetInt("concurrency")
	logger.Debug("normalize starting",
		"documents", len(docs),
		"preset", presetName,
		"mode", cfg.Mode,
		"output", post.Name(),
		"concurrency", concurrency)

	// Results arrive in completion order; content is written in input order.
	byName := make(map[string]*normalize.Result, len(docs))
	for res := range n.NormalizeMany(ctx, docs, concurrency) {
		byName[res.Document] = res
	}

	failed := 0
	for _, doc := range docs {
		res := byName[doc.Name]
		if res == nil {
			continue
		}
		if res.Error == nil {
			if err := writeResult(ctx, sink, post, res); err != nil {
				return err
			}
		} else {
			failed++
			logger.Error("normalize failed", "document", res.Document, "error", res.Error)
		}
		if reports != nil {
			if err := reports.Write(output.NewReport(res.Document, presetName, res, false)); err != nil {
				logger.Error("failed to write report", "error", err)
				return err
			}
		}
	}

	logger.Info("normalize complete", "documents", len(docs), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

func writeResult(ctx context.Context, sink *contentSink, post cleaner.Cleaner, res *normalize.Result) error {
	for _, w := range res.Warnings {
		logger.WarnContext(ctx, "normalize warning", "document", res.Document, "phase", w.Phase, "message", w.Message)
	}

	content, err := post.Clean(res.Content)
	if err != nil {
		logger.WarnContext(ctx, "output conversion failed, writing HTML", "document", res.Document, "error", err)
		res.AddWarning("output", "conversion failed, wrote HTML", err.Error())
		content = res.Content
	}
	return sink.write(res.Document, content)
}

// buildConfig resolves the preset or pipeline file and applies flag
// overrides on top.
func buildConfig(cmd *cobra.Command) (*normalize.Config, string, error) {
	flags := cmd.Flags()

	var (
		cfg  *normalize.Config
		name string
		err  error
	)
	if path, _ := flags.GetString("pipeline"); path != "" {
		cfg, err = normalize.LoadConfig(path)
		name = filepath.Base(path)
	} else {
		name = viper.GetString("preset")
		cfg, err = normalize.PresetByName(name)
	}
	if err != nil {
		return nil, "", err
	}

	mode, _ := flags.GetString("mode")
	preserve, _ := flags.GetStringSlice("preserve")
	remove, _ := flags.GetStringSlice("remove")
	strip, _ := flags.GetBool("strip-attrs")
	cfg = cfg.Merge(&normalize.Config{
		Mode:            normalize.Mode(mode),
		PreserveTags:    preserve,
		RemoveTags:      remove,
		StripAttributes: strip,
	})

	if flags.Changed("scrub") {
		cfg.Scrub, _ = flags.GetBool("scrub")
	}
	if viper.IsSet("max_size") && viper.GetString("max_size") != "" {
		limit, err := parseSize(viper.GetString("max_size"))
		if err != nil {
			return nil, "", err
		}
		cfg.MaxInputBytes = limit
	}

	return cfg, name, cfg.Validate()
}

// outputCleaner builds the stage applied to normalized HTML and returns
// the file extension for its output.
func outputCleaner(format string, pretty, stripImages, stripLinks bool) (cleaner.Cleaner, string, error) {
	switch strings.ToLower(format) {
	case "", "html":
		if pretty {
			return cleaner.NewChain(cleaner.NewPretty()), "html", nil
		}
		return cleaner.NewChain(cleaner.NewNoop()), "html", nil
	case "markdown", "md":
		return cleaner.NewChain(cleaner.NewMarkdown(
			cleaner.WithStripImages(stripImages),
			cleaner.WithStripLinks(stripLinks),
		)), "md", nil
	default:
		return nil, "", fmt.Errorf("unknown format: %s (use 'html' or 'markdown')", format)
	}
}

func openReportWriter(cmd *cobra.Command) (output.Writer, func(), error) {
	flags := cmd.Flags()
	name, _ := flags.GetString("report")
	if stats, _ := flags.GetBool("stats"); stats && name == "" {
		name = string(output.FormatText)
	}
	if name == "" {
		return nil, func() {}, nil
	}

	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, nil, err
	}

	var dest io.Writer = cmd.ErrOrStderr()
	var file *os.File
	if path, _ := flags.GetString("report-file"); path != "" {
		file, err = os.Create(path) //#nosec G304 -- CLI writes to user-specified report file
		if err != nil {
			logger.Error("failed to create report file", "path", path, "error", err)
			return nil, nil, err
		}
		dest = file
	}

	w, err := output.NewWriter(dest, format)
	if err != nil {
		return nil, nil, err
	}
	return w, func() {
		if err := w.Close(); err != nil {
			logger.Error("failed to flush report", "error", err)
		}
		if file != nil {
			_ = file.Close()
		}
	}, nil
}

// contentSink writes normalized content to stdout, a single file, or one
// file per document inside a directory.
type contentSink struct {
	stdout io.Writer
	file   string
	dir    string
	ext    string
}

func newContentSink(path, ext string, count int, stdout io.Writer) (*contentSink, error) {
	s := &contentSink{stdout: stdout, ext: ext}
	if path == "" {
		return s, nil
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		s.dir = path
		return s, nil
	}
	if count > 1 {
		return nil, fmt.Errorf("output %s must be a directory when normalizing %d documents", path, count)
	}
	s.file = path
	return s, nil
}

func (s *contentSink) write(name, content string) error {
	switch {
	case s.dir != "":
		base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		path := filepath.Join(s.dir, base+"."+s.ext)
		return os.WriteFile(path, []byte(content), 0o644) //#nosec G306 -- output is not sensitive
	case s.file != "":
		return os.WriteFile(s.file, []byte(content), 0o644) //#nosec G306 -- output is not sensitive
	default:
		_, err := fmt.Fprintln(s.stdout, content)
		return err
	}
}
