package normalize

import (
	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/internal/logger"
)

// sliceAttr marks the wrapper an editor places around a copied selection.
const sliceAttr = "data-pm-slice"

// StripPasteSliceWrappers replaces every top-level element carrying a
// data-pm-slice attribute by its children. Preserved blocks are emitted
// verbatim even when they carry the marker. Input that cannot be processed is
// returned unchanged.
func StripPasteSliceWrappers(raw string) string {
	out, err := stripPasteSliceWrappers(raw, NewStats())
	if err != nil {
		logger.Warn("slice wrapper cleanup failed", "error", err)
		return raw
	}
	return out
}

func stripPasteSliceWrappers(raw string, stats *Stats) (string, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return "", err
	}
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}

	for _, c := range childNodes(body) {
		switch {
		case c.Type == html.CommentNode:
			body.RemoveChild(c)
		case c.Type != html.ElementNode, IsPreservedBlock(c):
		case hasAttr(c, sliceAttr):
			spliceChildren(c)
			stats.SliceWrappersRemoved++
		}
	}

	return renderInner(body)
}
