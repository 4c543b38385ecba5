// Package source identifies the format of pasted or imported documents and
// converts them to HTML for the normalizer.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
)

// MIME types understood by ToHTML.
const (
	MIMEHTML     = "text/html"
	MIMEMarkdown = "text/markdown"
	MIMEText     = "text/plain"
)

// ErrUnsupportedFormat is returned for documents that cannot become HTML.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Document is a single untrusted input plus an optional format hint.
type Document struct {
	Content string
	// MIME is the declared type. Empty means detect from content.
	MIME string
	// Name identifies the document in logs and reports.
	Name string
}

var mimeAliases = map[string]string{
	"html":                  MIMEHTML,
	"htm":                   MIMEHTML,
	"application/xhtml+xml": MIMEHTML,
	"markdown":              MIMEMarkdown,
	"md":                    MIMEMarkdown,
	"text/x-markdown":       MIMEMarkdown,
	"text/md":               MIMEMarkdown,
	"text":                  MIMEText,
	"txt":                   MIMEText,
	"plain":                 MIMEText,
}

// NormalizeMIME lowercases a MIME type, drops its parameters and resolves
// the short aliases accepted on the command line.
func NormalizeMIME(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	if alias, ok := mimeAliases[mime]; ok {
		return alias
	}
	return mime
}

var (
	mdStrong = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^#{1,6}\s+\S`),
		regexp.MustCompile("(?m)^(```|~~~)"),
		regexp.MustCompile(`(?m)^\s*[-*+]\s+\[[ xX]\]\s`),
		regexp.MustCompile(`\[[^\]\n]+\]\([^)\s]+\)`),
		regexp.MustCompile(`(?m)^\|.+\|\s*$`),
	}
	// leadingTag catches fragments such as <ul> or <span> that content
	// sniffing does not count as HTML.
	leadingTag = regexp.MustCompile(`^\s*<(?:[a-zA-Z][\w:-]*|!--)[^>]*>`)

	mdWeak = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`),
		regexp.MustCompile(`(?m)^\s*\d+\.\s+\S`),
		regexp.MustCompile(`(?m)^>\s`),
		regexp.MustCompile(`\*\*[^*\n]+\*\*`),
	}
)

// Detect guesses the MIME type of content. HTML is recognised by content
// sniffing; text that carries markdown syntax is reported as markdown.
func Detect(content []byte) string {
	m := mimetype.Detect(content)
	switch {
	case m.Is(MIMEHTML):
		return MIMEHTML
	case m.Is(MIMEText):
		if leadingTag.Match(content) {
			return MIMEHTML
		}
		if looksLikeMarkdown(content) {
			return MIMEMarkdown
		}
		return MIMEText
	}
	return NormalizeMIME(m.String())
}

func looksLikeMarkdown(content []byte) bool {
	for _, re := range mdStrong {
		if re.Match(content) {
			return true
		}
	}
	weak := 0
	for _, re := range mdWeak {
		weak += len(re.FindAllIndex(content, 2))
	}
	return weak >= 2
}

// Resolve returns the document's MIME type, detecting it when no hint is set.
func (d Document) Resolve() string {
	if d.MIME != "" {
		return NormalizeMIME(d.MIME)
	}
	return Detect([]byte(d.Content))
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithRendererOptions(
		mdhtml.WithUnsafe(), // raw HTML is scrubbed downstream
	),
)

// ToHTML converts the document to HTML according to its MIME type.
func ToHTML(d Document) (string, error) {
	switch mime := d.Resolve(); mime {
	case MIMEHTML:
		return d.Content, nil
	case MIMEMarkdown:
		return MarkdownToHTML(d.Content)
	case MIMEText:
		return TextToHTML(d.Content), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
}

// MarkdownToHTML renders GitHub-flavoured markdown. Lists holding task
// checkboxes are tagged with the task-list class.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", fmt.Errorf("parse rendered markdown: %w", err)
	}
	doc.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		if ul.ChildrenFiltered("li").Find(`input[type="checkbox"]`).Length() > 0 {
			ul.AddClass("task-list")
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render markdown body: %w", err)
	}
	return out, nil
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// TextToHTML escapes plain text into paragraphs. Blank lines separate
// paragraphs and single newlines become <br>.
func TextToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var sb strings.Builder
	for _, para := range blankLines.Split(text, -1) {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.Join(lines, "<br>"))
		sb.WriteString("</p>")
	}
	return sb.String()
}
