package normalize

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/internal/logger"
)

var (
	lineBreakReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
	brSelector        = cascadia.MustCompile("br")

	// droppedTags never carry pasteable content; they go with their subtree.
	droppedTags = NewTagSet("script", "style", "template", "noscript", "title", "meta", "link", "head")
)

// Sanitize rebuilds the body of raw so that only elements named in
// preserveTags keep their boxes. Every other element is replaced by its
// sanitized children, whitespace-only text is dropped, and runs of two
// adjacent <br> elements close the preceding inline content into a <p>.
// When stripAttributes is set, preserved elements that carry text lose all
// of their attributes. Input that cannot be processed is returned unchanged.
func Sanitize(raw string, preserveTags []string, stripAttributes bool) string {
	out, err := sanitize(raw, NewTagSet(preserveTags...), stripAttributes, NewStats())
	if err != nil {
		logger.Warn("sanitize failed", "error", err)
		return raw
	}
	return out
}

func sanitize(raw string, preserve TagSet, stripAttributes bool, stats *Stats) (string, error) {
	doc, err := parseDocument(lineBreakReplacer.Replace(raw))
	if err != nil {
		return "", err
	}
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}

	s := &treeSanitizer{preserve: preserve, stripAttributes: stripAttributes, stats: stats}
	s.clean(body)
	coalesceLineBreaks(body, stats)

	return renderInner(body)
}

type treeSanitizer struct {
	preserve        TagSet
	stripAttributes bool
	stats           *Stats
}

// clean sanitizes the children of n in place.
func (s *treeSanitizer) clean(n *html.Node) {
	for _, c := range childNodes(n) {
		switch c.Type {
		case html.TextNode:
			if isBlank(c.Data) {
				n.RemoveChild(c)
				s.stats.TextNodesDropped++
			}
		case html.ElementNode:
			s.cleanElement(n, c)
		default:
			n.RemoveChild(c)
		}
	}
}

func (s *treeSanitizer) cleanElement(parent, el *html.Node) {
	if droppedTags.Has(el) {
		parent.RemoveChild(el)
		return
	}

	if s.preserve.Has(el) {
		// Empty preserved boxes such as media embeds are kept untouched.
		if isBlank(textContent(el)) {
			return
		}
		if s.stripAttributes && len(el.Attr) > 0 {
			s.stats.AttributesStripped += len(el.Attr)
			el.Attr = nil
		}
		s.clean(el)
		return
	}

	s.clean(el)
	spliceChildren(el)
	s.stats.WrappersFlattened++
}

// coalesceLineBreaks turns every pair of adjacent <br> elements into a
// paragraph holding the inline siblings that precede the pair.
func coalesceLineBreaks(root *html.Node, stats *Stats) {
	brs := cascadia.QueryAll(root, brSelector)
	for i := 0; i < len(brs)-1; i++ {
		cur, next := brs[i], brs[i+1]
		if cur.Parent == nil || cur.NextSibling != next {
			continue
		}

		var run []*html.Node
		for prev := cur.PrevSibling; prev != nil && !isBlock(prev); prev = prev.PrevSibling {
			run = append(run, prev)
		}

		p := newElementNode("p")
		for j := len(run) - 1; j >= 0; j-- {
			cur.Parent.RemoveChild(run[j])
			p.AppendChild(run[j])
		}

		parent := cur.Parent
		parent.InsertBefore(p, cur)
		parent.RemoveChild(cur)
		parent.RemoveChild(next)
		stats.ParagraphsCoalesced++
		i++
	}
}
