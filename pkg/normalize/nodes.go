package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var bodySelector = cascadia.MustCompile("body")

// parseDocument parses markup into a full document tree. The parser never
// rejects malformed markup, so errors only come from the reader.
func parseDocument(raw string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// bodyOf returns the body element of a parsed document.
func bodyOf(doc *goquery.Document) *html.Node {
	for _, n := range doc.Nodes {
		if body := bodySelector.MatchFirst(n); body != nil {
			return body
		}
	}
	return nil
}

func newElementNode(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// childNodes snapshots the children of n so callers can mutate while iterating.
func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// detachChildren removes every child of n and returns them in order.
func detachChildren(n *html.Node) []*html.Node {
	children := childNodes(n)
	for _, c := range children {
		n.RemoveChild(c)
	}
	return children
}

// spliceChildren replaces n by its own children.
func spliceChildren(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for _, c := range detachChildren(n) {
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// textContent concatenates all descendant text nodes.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func tagName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

func isElement(n *html.Node, tag string) bool {
	return tagName(n) == tag
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// hasDescendant reports whether any strict descendant of n satisfies match.
func hasDescendant(n *html.Node, match func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) || hasDescendant(c, match) {
			return true
		}
	}
	return false
}

func renderOuter(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render %s: %w", tagName(n), err)
	}
	return buf.String(), nil
}

func renderInner(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render children of %s: %w", tagName(n), err)
		}
	}
	return buf.String(), nil
}

// bodyHTML renders the inner markup of the document body.
func bodyHTML(doc *goquery.Document) (string, error) {
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}
	return renderInner(body)
}
