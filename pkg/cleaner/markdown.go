package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

// Placeholders survive markdown escaping and are swapped for checkbox
// markers afterwards.
const (
	taskCheckedMark = "pastehtmltaskchecked"
	taskOpenMark    = "pastehtmltaskopen"
)

var taskMarkers = regexp.MustCompile(`(` + taskCheckedMark + `|` + taskOpenMark + `)\s*`)

// MarkdownCleaner converts normalized HTML to GitHub-flavoured markdown.
// Task items (li[data-type=taskItem]) become "[x]" / "[ ]" list entries and
// tables are rendered as pipe tables.
type MarkdownCleaner struct {
	config markdownConfig
	conv   *converter.Converter
}

// MarkdownOption configures the markdown cleaner.
type MarkdownOption func(*markdownConfig)

type markdownConfig struct {
	// StripLinks removes link URLs, keeping only the link text
	StripLinks bool
	// StripImages removes images entirely
	StripImages bool
}

// WithStripLinks configures the cleaner to remove link URLs.
func WithStripLinks(strip bool) MarkdownOption {
	return func(c *markdownConfig) {
		c.StripLinks = strip
	}
}

// WithStripImages configures the cleaner to remove images.
func WithStripImages(strip bool) MarkdownOption {
	return func(c *markdownConfig) {
		c.StripImages = strip
	}
}

// NewMarkdown creates a new Markdown cleaner.
func NewMarkdown(opts ...MarkdownOption) *MarkdownCleaner {
	c := &MarkdownCleaner{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				strikethrough.NewStrikethroughPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(&c.config)
	}
	return c
}

// Clean converts HTML to Markdown.
func (c *MarkdownCleaner) Clean(html string) (string, error) {
	prepared, err := c.prepare(html)
	if err != nil {
		return "", err
	}

	markdown, err := c.conv.ConvertString(prepared)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	markdown = taskMarkers.ReplaceAllStringFunc(markdown, func(m string) string {
		if strings.HasPrefix(m, taskCheckedMark) {
			return "[x] "
		}
		return "[ ] "
	})

	return cleanWhitespace(markdown), nil
}

// prepare rewrites the parts of the editor dialect the converter does not
// know about.
func (c *MarkdownCleaner) prepare(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(`li[data-type="taskItem"]`).Each(func(_ int, li *goquery.Selection) {
		mark := taskOpenMark
		if li.AttrOr("data-checked", "") == "true" {
			mark = taskCheckedMark
		}
		li.ChildrenFiltered("input").Remove()
		li.PrependHtml(mark + " ")
	})

	if c.config.StripImages {
		doc.Find("img").Remove()
	}
	if c.config.StripLinks {
		doc.Find("a").Each(func(_ int, a *goquery.Selection) {
			if a.Contents().Length() == 0 {
				a.Remove()
				return
			}
			a.Contents().Unwrap()
		})
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

// Name returns the cleaner type.
func (c *MarkdownCleaner) Name() string {
	return "markdown"
}

// cleanWhitespace normalizes whitespace in the output.
func cleanWhitespace(s string) string {
	// Replace multiple blank lines with a single blank line (max 2 consecutive newlines)
	lines := strings.Split(s, "\n")
	var result []string
	blankCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blankCount++
			if blankCount <= 1 {
				result = append(result, "")
			}
		} else {
			blankCount = 0
			result = append(result, strings.TrimRight(line, " \t"))
		}
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
