package normalize

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// PreservedTags are the block structures the downstream document model
// understands natively. Sanitization never flattens them.
var PreservedTags = []string{
	"table", "thead", "tbody", "tr", "th", "td",
	"ul", "ol", "li",
	"pre", "blockquote", "figure",
	"iframe", "video", "audio",
	"svg", "math", "embed",
}

// TagSet is a case-insensitive set of element names.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from tag names. Blank names are ignored.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

// Has reports whether n is an element whose name is in the set.
func (s TagSet) Has(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return s.HasName(n.Data)
}

// HasName reports whether the tag name is in the set.
func (s TagSet) HasName(tag string) bool {
	_, ok := s[strings.ToLower(tag)]
	return ok
}

// Tags returns the set members in sorted order.
func (s TagSet) Tags() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var (
	preservedSet       = NewTagSet(PreservedTags...)
	tableStructuralSet = NewTagSet("table", "thead", "tbody", "tfoot", "tr", "colgroup", "col")
	tableCellSet       = NewTagSet("td", "th")

	// blockSet bounds the inline run collected when coalescing line breaks.
	blockSet = NewTagSet(append([]string{
		"p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "hr",
		"section", "article", "header", "footer", "aside", "nav", "main",
		"dl", "dt", "dd", "figcaption", "address", "details", "summary",
		"tfoot", "caption", "colgroup", "col",
	}, PreservedTags...)...)
)

// IsPreservedBlock reports whether n is an element in the preserved-tag set.
// Text, comments and unknown tags are never preserved.
func IsPreservedBlock(n *html.Node) bool {
	return preservedSet.Has(n)
}

func isTableStructural(n *html.Node) bool {
	return tableStructuralSet.Has(n)
}

func isTableCell(n *html.Node) bool {
	return tableCellSet.Has(n)
}

func isBlock(n *html.Node) bool {
	return blockSet.Has(n)
}
