package normalize

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/internal/logger"
)

var tableSelector = cascadia.MustCompile("table")

// StripTableWhitespace removes whitespace-only text nodes directly under
// table-structural elements of the tree rooted at n, then gives every empty
// td/th a single empty paragraph. The tree is mutated in place.
func StripTableWhitespace(n *html.Node) {
	stripTableWhitespace(n, NewStats())
}

func stripTableWhitespace(n *html.Node, stats *Stats) {
	if n == nil {
		return
	}
	stripStructuralWhitespace(n, stats)
	fillEmptyCells(n, stats)
}

func stripStructuralWhitespace(n *html.Node, stats *Stats) {
	structural := isTableStructural(n)
	for _, c := range childNodes(n) {
		if structural && c.Type == html.TextNode && isBlank(c.Data) {
			n.RemoveChild(c)
			stats.WhitespaceNodesRemoved++
			continue
		}
		if c.Type == html.ElementNode {
			stripStructuralWhitespace(c, stats)
		}
	}
}

func fillEmptyCells(n *html.Node, stats *Stats) {
	var cells []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isTableCell(n) && n.FirstChild == nil {
			cells = append(cells, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	for _, cell := range cells {
		cell.AppendChild(newElementNode("p"))
		stats.EmptyCellsFilled++
	}
}

// CleanTableWhitespace applies StripTableWhitespace to every table in the
// markup and returns the body's inner markup. Input that cannot be processed
// is returned unchanged.
func CleanTableWhitespace(raw string) string {
	out, err := cleanTableWhitespace(raw, NewStats())
	if err != nil {
		logger.Warn("table whitespace cleanup failed", "error", err)
		return raw
	}
	return out
}

func cleanTableWhitespace(raw string, stats *Stats) (string, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return "", err
	}
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}
	for _, table := range cascadia.QueryAll(body, tableSelector) {
		stripTableWhitespace(table, stats)
	}
	return renderInner(body)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
