package normalize

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/internal/logger"
)

// SniffRule is a named predicate over a parsed document. Rules are evaluated
// in order and the first match wins.
type SniffRule struct {
	Name  string
	Match func(doc *html.Node) bool
}

var metaSelector = cascadia.MustCompile("meta")

var spreadsheetGenerators = []string{"Microsoft", "LibreOffice", "OpenOffice"}

// RootAttributeRule matches documents whose root element carries an
// attribute value mentioning microsoft or excel, as Office namespace
// declarations do.
var RootAttributeRule = SniffRule{
	Name: "root-attribute",
	Match: func(doc *html.Node) bool {
		root := documentElement(doc)
		if root == nil {
			return false
		}
		for _, a := range root.Attr {
			if strings.Contains(a.Val, "microsoft") || strings.Contains(a.Val, "excel") {
				return true
			}
		}
		return false
	},
}

// GeneratorMetaRule matches a <meta name="generator"> naming an office suite.
var GeneratorMetaRule = SniffRule{
	Name: "generator-meta",
	Match: func(doc *html.Node) bool {
		for _, meta := range cascadia.QueryAll(doc, metaSelector) {
			name, _ := getAttr(meta, "name")
			if !strings.EqualFold(name, "generator") {
				continue
			}
			content, _ := getAttr(meta, "content")
			for _, g := range spreadsheetGenerators {
				if strings.Contains(content, g) {
					return true
				}
			}
		}
		return false
	},
}

// SingleTableBodyRule matches documents whose body is nothing but a table.
var SingleTableBodyRule = SniffRule{
	Name: "single-table-body",
	Match: func(doc *html.Node) bool {
		body := bodySelector.MatchFirst(doc)
		if body == nil {
			return false
		}
		inner, err := renderInner(body)
		if err != nil {
			logger.Debug("render body for sniffing failed", "error", err)
			return false
		}
		inner = strings.TrimSpace(inner)
		return strings.HasPrefix(inner, "<table") && strings.HasSuffix(inner, "</table>")
	},
}

// DefaultSniffRules returns the spreadsheet-export rules in evaluation order.
func DefaultSniffRules() []SniffRule {
	return []SniffRule{RootAttributeRule, GeneratorMetaRule, SingleTableBodyRule}
}

// Sniff evaluates rules in order and returns the name of the first match.
func Sniff(doc *html.Node, rules []SniffRule) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, r := range rules {
		if r.Match != nil && r.Match(doc) {
			return r.Name, true
		}
	}
	return "", false
}

// LooksLikeSpreadsheetExport reports whether a parsed document appears to be
// an HTML export from a spreadsheet application.
func LooksLikeSpreadsheetExport(doc *html.Node) bool {
	_, ok := Sniff(doc, DefaultSniffRules())
	return ok
}

// LooksLikeSpreadsheetExportHTML parses raw and applies LooksLikeSpreadsheetExport.
func LooksLikeSpreadsheetExportHTML(raw string) bool {
	_, ok := sniffHTML(raw, DefaultSniffRules())
	return ok
}

func sniffHTML(raw string, rules []SniffRule) (string, bool) {
	doc, err := parseDocument(raw)
	if err != nil {
		logger.Debug("parse for sniffing failed", "error", err)
		return "", false
	}
	return Sniff(doc.Get(0), rules)
}

// documentElement returns the root element of a document node, or n itself
// when it is already an element.
func documentElement(n *html.Node) *html.Node {
	if n.Type == html.DocumentNode {
		return firstElementChild(n)
	}
	return n
}
