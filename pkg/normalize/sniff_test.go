package normalize

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/pkg/source"
)

func parseDoc(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantRule string
		wantOK   bool
	}{
		{
			name:     "excel namespace on root",
			html:     `<html xmlns:x="urn:schemas-microsoft-com:office:excel"><body><p>a</p></body></html>`,
			wantRule: "root-attribute",
			wantOK:   true,
		},
		{
			name:     "microsoft generator meta",
			html:     `<html><head><meta name="Generator" content="Microsoft Excel 15"></head><body><p>a</p></body></html>`,
			wantRule: "generator-meta",
			wantOK:   true,
		},
		{
			name:     "libreoffice generator meta",
			html:     `<html><head><meta name="generator" content="LibreOffice 7.5"></head><body><p>a</p></body></html>`,
			wantRule: "generator-meta",
			wantOK:   true,
		},
		{
			name:     "body is a single table",
			html:     "\n<table><tr><td>1</td></tr></table>\n",
			wantRule: "single-table-body",
			wantOK:   true,
		},
		{
			name:   "root attribute match is case sensitive",
			html:   `<html lang="MICROSOFT"><body><p>a</p></body></html>`,
			wantOK: false,
		},
		{
			name:   "other generator",
			html:   `<html><head><meta name="generator" content="Hugo 0.120"></head><body><p>a</p></body></html>`,
			wantOK: false,
		},
		{
			name:   "table followed by text",
			html:   `<table><tr><td>1</td></tr></table><p>after</p>`,
			wantOK: false,
		},
		{
			name:   "ordinary paste",
			html:   `<p>hello</p>`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.html)

			rule, ok := Sniff(doc, DefaultSniffRules())
			if ok != tt.wantOK || rule != tt.wantRule {
				t.Errorf("Sniff() = (%q, %v), want (%q, %v)", rule, ok, tt.wantRule, tt.wantOK)
			}
			if got := LooksLikeSpreadsheetExport(doc); got != tt.wantOK {
				t.Errorf("LooksLikeSpreadsheetExport() = %v, want %v", got, tt.wantOK)
			}
			if got := LooksLikeSpreadsheetExportHTML(tt.html); got != tt.wantOK {
				t.Errorf("LooksLikeSpreadsheetExportHTML() = %v, want %v", got, tt.wantOK)
			}
		})
	}
}

func TestSniff_FirstMatchWins(t *testing.T) {
	doc := parseDoc(t, `<html xmlns:o="urn:schemas-microsoft-com:office:office"><head><meta name="generator" content="Microsoft Excel"></head><body><table><tr><td>1</td></tr></table></body></html>`)

	rule, ok := Sniff(doc, DefaultSniffRules())
	if !ok || rule != "root-attribute" {
		t.Errorf("expected root-attribute to win, got (%q, %v)", rule, ok)
	}

	rule, ok = Sniff(doc, []SniffRule{SingleTableBodyRule, RootAttributeRule})
	if !ok || rule != "single-table-body" {
		t.Errorf("expected custom order to be honoured, got (%q, %v)", rule, ok)
	}
}

func TestSniff_CustomRules(t *testing.T) {
	googleSheets := SniffRule{
		Name: "google-sheets",
		Match: func(doc *html.Node) bool {
			var found bool
			var walk func(*html.Node)
			walk = func(n *html.Node) {
				if _, ok := getAttr(n, "data-sheets-value"); ok {
					found = true
				}
				for c := n.FirstChild; c != nil && !found; c = c.NextSibling {
					walk(c)
				}
			}
			walk(doc)
			return found
		},
	}

	doc := parseDoc(t, `<p>x</p><table><tr><td data-sheets-value="1">1</td></tr></table>`)
	rule, ok := Sniff(doc, []SniffRule{googleSheets})
	if !ok || rule != "google-sheets" {
		t.Errorf("Sniff() = (%q, %v), want google-sheets", rule, ok)
	}

	if _, ok := Sniff(nil, DefaultSniffRules()); ok {
		t.Error("expected nil document not to match")
	}
	if _, ok := Sniff(doc, []SniffRule{{Name: "no-predicate"}}); ok {
		t.Error("expected rule without predicate not to match")
	}
}

func TestNormalizer_Detect(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		doc      source.Document
		want     Origin
		wantRule string
		wantErr  bool
	}{
		{
			name:     "generator meta",
			doc:      source.Document{Content: `<html><head><meta name="Generator" content="Microsoft Excel 15"></head><body><p>x</p></body></html>`},
			want:     OriginSpreadsheet,
			wantRule: "generator-meta",
		},
		{
			name: "ordinary html",
			doc:  source.Document{Content: `<p>hello</p>`, MIME: "html"},
			want: OriginHTML,
		},
		{
			name: "markdown is never sniffed",
			doc:  source.Document{Content: "| a | b |\n|---|---|\n| 1 | 2 |\n", MIME: "md"},
			want: OriginMarkdown,
		},
		{
			name:     "assumed",
			config:   PresetSpreadsheet(),
			doc:      source.Document{Content: `<p>x</p>`},
			want:     OriginSpreadsheet,
			wantRule: "assumed",
		},
		{
			name:    "unsupported",
			doc:     source.Document{Content: "x", MIME: "image/png"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := mustNew(t, tt.config)
			origin, rule, err := n.Detect(tt.doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Detect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if origin != tt.want || rule != tt.wantRule {
				t.Errorf("Detect() = (%q, %q), want (%q, %q)", origin, rule, tt.want, tt.wantRule)
			}
		})
	}
}
