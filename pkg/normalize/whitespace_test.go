package normalize

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

func parseTable(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	table := cascadia.Query(doc, tableSelector)
	if table == nil {
		t.Fatalf("no table in %q", raw)
	}
	return table
}

func TestStripTableWhitespace(t *testing.T) {
	table := parseTable(t, "<table>\n  <tr>\n    <th> </th>\n    <td></td>\n  </tr>\n  <tr>\n    <td>value</td>\n  </tr>\n</table>")

	StripTableWhitespace(table)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isTableStructural(n) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
					t.Errorf("whitespace text left under <%s>", n.Data)
				}
			}
		}
		if isTableCell(n) && n.FirstChild == nil {
			t.Errorf("empty <%s> left without content", n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)

	got, err := renderOuter(table)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<table><tbody><tr><th> </th><td><p></p></td></tr><tr><td>value</td></tr></tbody></table>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStripTableWhitespace_Nil(t *testing.T) {
	StripTableWhitespace(nil)
}

func TestCleanTableWhitespace(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "cleans every table",
			html: "<p>a</p><table>\n<tr><td></td></tr>\n</table><table> <tr> <td>b</td> </tr> </table>",
			want: `<p>a</p><table><tbody><tr><td><p></p></td></tr></tbody></table><table><tbody><tr><td>b</td></tr></tbody></table>`,
		},
		{
			name: "keeps whitespace outside tables",
			html: `<p> a </p>`,
			want: `<p> a </p>`,
		},
		{
			name: "nested tables",
			html: "<table><tr><td><table>\n<tr><td></td></tr></table></td></tr></table>",
			want: `<table><tbody><tr><td><table><tbody><tr><td><p></p></td></tr></tbody></table></td></tr></tbody></table>`,
		},
		{
			name: "empty input",
			html: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTableWhitespace(tt.html); got != tt.want {
				t.Errorf("CleanTableWhitespace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanTableWhitespace_Stats(t *testing.T) {
	stats := NewStats()
	if _, err := cleanTableWhitespace("<table>\n<tr><td></td><th></th></tr>\n</table>", stats); err != nil {
		t.Fatalf("cleanTableWhitespace() error = %v", err)
	}
	if stats.EmptyCellsFilled != 2 {
		t.Errorf("EmptyCellsFilled = %d, want 2", stats.EmptyCellsFilled)
	}
	if stats.WhitespaceNodesRemoved != 2 {
		t.Errorf("WhitespaceNodesRemoved = %d, want 2", stats.WhitespaceNodesRemoved)
	}
}
