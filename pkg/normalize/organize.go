package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/internal/logger"
)

var (
	taskListSelector  = cascadia.MustCompile(`ul[class*="task-list"]`)
	listItemSelector  = cascadia.MustCompile("li")
	inputSelector     = cascadia.MustCompile("input")
	bodyImageSelector = cascadia.MustCompile("body > p > img")
	imgSelector       = cascadia.MustCompile("img")
)

// Organize rewrites pasted markup into the block structure the editor
// expects: task lists become data-type annotated lists, empty list items get
// a paragraph, images are lifted out of top-level paragraphs, and tables are
// cleared of whitespace text. Empty input yields an empty string.
func Organize(raw string) string {
	out, err := organize(raw, NewStats())
	if err != nil {
		logger.Warn("organize failed", "error", err)
		return raw
	}
	return out
}

func organize(raw string, stats *Stats) (string, error) {
	if raw == "" {
		return "", nil
	}
	doc, err := parseDocument(raw)
	if err != nil {
		return "", err
	}
	body := bodyOf(doc)
	if body == nil {
		return "", nil
	}

	convertChecklists(doc, stats)
	fillEmptyListItems(doc, stats)
	hoistParagraphImages(doc, stats)
	doc.FindMatcher(tableSelector).Each(func(_ int, s *goquery.Selection) {
		stripTableWhitespace(s.Get(0), stats)
	})

	return reassemble(body)
}

// convertChecklists rewrites <ul class="task-list"> markup into
// data-type="taskList" lists whose checkbox items carry data-checked.
func convertChecklists(doc *goquery.Document, stats *Stats) {
	doc.FindMatcher(taskListSelector).Each(func(_ int, s *goquery.Selection) {
		ul := s.Get(0)
		ul.Attr = []html.Attribute{{Key: "data-type", Val: "taskList"}}

		if first := firstElementChild(ul); isElement(first, "p") {
			spliceChildren(first)
		}

		s.FindMatcher(listItemSelector).Each(func(_ int, item *goquery.Selection) {
			li := item.Get(0)
			li.Attr = nil
			checkbox := findCheckbox(li)
			if checkbox == nil {
				return
			}
			checked := "false"
			if hasAttr(checkbox, "checked") {
				checked = "true"
			}
			setAttr(li, "data-type", "taskItem")
			setAttr(li, "data-checked", checked)
			stats.TaskItemsMarked++
		})
		stats.ChecklistsConverted++
	})
}

func findCheckbox(li *html.Node) *html.Node {
	for _, input := range cascadia.QueryAll(li, inputSelector) {
		if typ, _ := getAttr(input, "type"); strings.EqualFold(typ, "checkbox") {
			return input
		}
	}
	return nil
}

func fillEmptyListItems(doc *goquery.Document, stats *Stats) {
	doc.FindMatcher(listItemSelector).Each(func(_ int, s *goquery.Selection) {
		li := s.Get(0)
		if li.FirstChild == nil {
			li.AppendChild(newElementNode("p"))
			stats.EmptyItemsFilled++
		}
	})
}

// hoistParagraphImages moves each image that is a direct child of a
// top-level paragraph to sit just before that paragraph.
func hoistParagraphImages(doc *goquery.Document, stats *Stats) {
	doc.FindMatcher(bodyImageSelector).Each(func(_ int, s *goquery.Selection) {
		img := s.Get(0)
		p := img.Parent
		if p == nil || p.Parent == nil {
			return
		}
		p.RemoveChild(img)
		p.Parent.InsertBefore(img, p)
		stats.ImagesHoisted++
	})
}

// reassemble serializes the body's children. Elements other than links that
// contain an image contribute only their inner markup.
func reassemble(body *html.Node) (string, error) {
	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(html.EscapeString(c.Data))
		case html.ElementNode:
			var (
				part string
				err  error
			)
			if !isElement(c, "a") && hasDescendant(c, imgSelector.Match) {
				part, err = renderInner(c)
			} else {
				part, err = renderOuter(c)
			}
			if err != nil {
				return "", err
			}
			sb.WriteString(part)
		}
	}
	return sb.String(), nil
}
