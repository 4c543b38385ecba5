package normalize

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/internal/logger"
)

var paragraphSelector = cascadia.MustCompile("p")

// RemoveTags unwraps every element whose name is in tags, keeping its
// children in place. Matching is case-insensitive and covers prefixed Office
// names such as o:p.
func RemoveTags(raw string, tags ...string) string {
	out, err := removeTags(raw, NewTagSet(tags...), NewStats())
	if err != nil {
		logger.Warn("tag removal failed", "error", err)
		return raw
	}
	return out
}

func removeTags(raw string, tags TagSet, stats *Stats) (string, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return "", err
	}
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}
	if len(tags) == 0 {
		return renderInner(body)
	}

	var matches []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if tags.Has(c) {
				matches = append(matches, c)
			}
			walk(c)
		}
	}
	walk(body)

	// Innermost first so nested matches still have a parent when unwrapped.
	for i := len(matches) - 1; i >= 0; i-- {
		spliceChildren(matches[i])
		stats.ElementsUnwrapped++
	}

	return renderInner(body)
}

// RemoveEmptyParagraphs drops every <p> with no visible text unless it holds
// an image.
func RemoveEmptyParagraphs(raw string) string {
	out, err := removeEmptyParagraphs(raw, NewStats())
	if err != nil {
		logger.Warn("empty paragraph removal failed", "error", err)
		return raw
	}
	return out
}

func removeEmptyParagraphs(raw string, stats *Stats) (string, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return "", err
	}
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}

	for _, p := range cascadia.QueryAll(body, paragraphSelector) {
		if p.Parent == nil || !isBlank(textContent(p)) {
			continue
		}
		if hasDescendant(p, imgSelector.Match) {
			continue
		}
		p.Parent.RemoveChild(p)
		stats.EmptyParagraphsRemoved++
	}

	return renderInner(body)
}

// UnwrapLeadingParagraph replaces a leading top-level <p> by its contents so
// a single-line paste merges into the surrounding text block.
func UnwrapLeadingParagraph(raw string) string {
	out, err := unwrapLeadingParagraph(raw, NewStats())
	if err != nil {
		logger.Warn("leading paragraph unwrap failed", "error", err)
		return raw
	}
	return out
}

func unwrapLeadingParagraph(raw string, stats *Stats) (string, error) {
	doc, err := parseDocument(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}
	if first := body.FirstChild; isElement(first, "p") {
		spliceChildren(first)
		stats.ElementsUnwrapped++
	}
	return renderInner(body)
}
