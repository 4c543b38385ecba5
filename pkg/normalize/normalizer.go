package normalize

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"

	"github.com/jmylchreest/pastehtml/internal/logger"
	"github.com/jmylchreest/pastehtml/pkg/source"
)

// Step names used in Stats.StepDurations and warnings.
const (
	StepConvert         = "convert"
	StepUnicode         = "unicode"
	StepSniff           = "sniff"
	StepSliceWrappers   = "slice-wrappers"
	StepRemoveTags      = "remove-tags"
	StepSanitize        = "sanitize"
	StepOrganize        = "organize"
	StepTables          = "tables"
	StepEmptyParagraphs = "empty-paragraphs"
	StepLeadingPara     = "leading-paragraph"
	StepScrub           = "scrub"
)

// assumedRule is reported when Config.AssumeSpreadsheet skips sniffing.
const assumedRule = "assumed"

type stepFunc func(content string, stats *Stats) (string, error)

type step struct {
	name string
	run  stepFunc
}

// Normalizer runs the configured pipeline over documents.
// It implements the cleaner.Cleaner interface and is safe for concurrent
// use; Stats reports the most recently finished run.
type Normalizer struct {
	config *Config
	rules  []SniffRule

	mu    sync.Mutex
	stats *Stats
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSniffRules replaces the spreadsheet detection rules.
func WithSniffRules(rules ...SniffRule) Option {
	return func(n *Normalizer) {
		n.rules = rules
	}
}

// New creates a Normalizer. A nil config means DefaultConfig.
func New(config *Config, opts ...Option) (*Normalizer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	n := &Normalizer{
		config: config,
		rules:  DefaultSniffRules(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Name returns the cleaner name for logging.
func (n *Normalizer) Name() string {
	return "pastehtml"
}

// Config returns the configuration the normalizer was built with.
func (n *Normalizer) Config() *Config {
	return n.config
}

// Stats returns the stats of the most recent run, or nil before any run.
func (n *Normalizer) Stats() *Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

// Clean normalizes HTML content.
// This method implements the cleaner.Cleaner interface.
func (n *Normalizer) Clean(content string) (string, error) {
	result := n.Normalize(source.Document{Content: content, MIME: source.MIMEHTML})
	return result.Content, result.Error
}

// Normalize runs the pipeline over a document. A step that fails leaves its
// input in place and records a warning; only oversized or unconvertible
// documents set Result.Error.
func (n *Normalizer) Normalize(doc source.Document) *Result {
	start := time.Now()
	result := &Result{Document: doc.Name, Stats: NewStats()}
	stats := result.Stats
	stats.InputBytes = len(doc.Content)
	defer func() {
		stats.OutputBytes = len(result.Content)
		stats.TotalDuration = time.Since(start)
		n.mu.Lock()
		n.stats = stats
		n.mu.Unlock()
	}()

	if limit := n.config.MaxInputBytes; limit > 0 && int64(len(doc.Content)) > limit {
		result.Error = fmt.Errorf("%w: %s is %s, limit %s", ErrInputTooLarge, displayName(doc),
			humanize.Bytes(uint64(len(doc.Content))), humanize.Bytes(uint64(limit)))
		return result
	}

	mime := doc.Resolve()
	stats.Origin = originOf(mime)
	log := logger.With("document", displayName(doc), "mime", mime)

	convertStart := time.Now()
	content, err := source.ToHTML(source.Document{Content: doc.Content, MIME: mime, Name: doc.Name})
	stats.RecordStep(StepConvert, time.Since(convertStart))
	if err != nil {
		result.Error = err
		return result
	}

	if n.config.NormalizeUnicode {
		content = n.run(result, StepUnicode, content, normalizeUnicode)
	}

	sniffStart := time.Now()
	if rule, ok := n.sniff(content, stats.Origin); ok {
		stats.Origin = OriginSpreadsheet
		stats.SniffRule = rule
	}
	stats.RecordStep(StepSniff, time.Since(sniffStart))

	for _, s := range n.steps(stats.Origin) {
		content = n.run(result, s.name, content, s.run)
	}

	result.Content = content
	log.Debug("normalized",
		"origin", stats.Origin,
		"input_bytes", stats.InputBytes,
		"output_bytes", len(content),
		"warnings", len(result.Warnings),
		"duration", time.Since(start))
	return result
}

// Detect reports the origin Normalize would assign to doc and, for
// spreadsheet exports, the rule that matched. No cleanup steps run.
func (n *Normalizer) Detect(doc source.Document) (Origin, string, error) {
	mime := doc.Resolve()
	content, err := source.ToHTML(source.Document{Content: doc.Content, MIME: mime})
	if err != nil {
		return "", "", err
	}
	origin := originOf(mime)
	if rule, ok := n.sniff(content, origin); ok {
		return OriginSpreadsheet, rule, nil
	}
	return origin, "", nil
}

func (n *Normalizer) sniff(content string, origin Origin) (string, bool) {
	if n.config.AssumeSpreadsheet {
		return assumedRule, true
	}
	if !n.config.DetectSpreadsheets || origin != OriginHTML {
		return "", false
	}
	return sniffHTML(content, n.rules)
}

// steps returns the pipeline for a document of the given origin. Spreadsheet
// exports only get their tables repaired so cell structure survives.
func (n *Normalizer) steps(origin Origin) []step {
	cfg := n.config
	var steps []step

	if origin == OriginSpreadsheet {
		steps = append(steps, step{StepTables, cleanTableWhitespace})
		if cfg.Scrub {
			steps = append(steps, step{StepScrub, scrub})
		}
		return steps
	}

	if cfg.StripSliceWrappers {
		steps = append(steps, step{StepSliceWrappers, stripPasteSliceWrappers})
	}
	if len(cfg.RemoveTags) > 0 {
		tags := NewTagSet(cfg.RemoveTags...)
		steps = append(steps, step{StepRemoveTags, func(content string, stats *Stats) (string, error) {
			return removeTags(content, tags, stats)
		}})
	}
	if s, ok := n.sanitizeStep(); ok {
		steps = append(steps, s)
	}
	steps = append(steps, step{StepOrganize, organize})
	if cfg.RemoveEmptyParagraphs {
		steps = append(steps, step{StepEmptyParagraphs, removeEmptyParagraphs})
	}
	if cfg.UnwrapLeadingParagraph {
		steps = append(steps, step{StepLeadingPara, unwrapLeadingParagraph})
	}
	if cfg.Scrub {
		steps = append(steps, step{StepScrub, scrub})
	}
	return steps
}

var textModeTags = NewTagSet("p", "br")

func (n *Normalizer) sanitizeStep() (step, bool) {
	var (
		preserve TagSet
		strip    bool
	)
	switch n.config.Mode {
	case ModeKeep:
		return step{}, false
	case ModeText:
		preserve, strip = textModeTags, true
	default:
		preserve, strip = NewTagSet(n.config.PreserveTags...), n.config.StripAttributes
	}
	return step{StepSanitize, func(content string, stats *Stats) (string, error) {
		return sanitize(content, preserve, strip, stats)
	}}, true
}

// run executes one step, keeping the previous content when it fails.
func (n *Normalizer) run(result *Result, name, content string, fn stepFunc) string {
	start := time.Now()
	out, err := fn(content, result.Stats)
	result.Stats.RecordStep(name, time.Since(start))
	if err != nil {
		logger.Warn("normalize step failed, keeping previous content", "step", name, "error", err)
		result.AddWarning(name, "step failed, keeping previous content", err.Error())
		return content
	}
	logger.Debug("normalize step", "step", name, "origin", result.Stats.Origin, "bytes", len(out))
	return out
}

func normalizeUnicode(content string, _ *Stats) (string, error) {
	return norm.NFC.String(content), nil
}

func scrub(content string, _ *Stats) (string, error) {
	return defaultScrubPolicy.Sanitize(content), nil
}

func originOf(mime string) Origin {
	switch mime {
	case source.MIMEMarkdown:
		return OriginMarkdown
	case source.MIMEText:
		return OriginText
	default:
		return OriginHTML
	}
}

func displayName(doc source.Document) string {
	if doc.Name != "" {
		return doc.Name
	}
	return "<input>"
}
