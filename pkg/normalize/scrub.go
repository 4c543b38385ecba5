package normalize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	checkboxType   = regexp.MustCompile(`^(?i:checkbox)$`)
	checkedFlag    = regexp.MustCompile(`^(true|false)$`)
	taskListType   = regexp.MustCompile(`^taskList$`)
	taskItemType   = regexp.MustCompile(`^taskItem$`)
	codeLanguage   = regexp.MustCompile(`^language-[\w+#.-]+$`)
	mediaDimension = regexp.MustCompile(`^\d{1,4}(%|px)?$`)
)

// ScrubPolicy returns the allow-list used by the final scrub step. It admits
// the editor dialect (paragraphs, headings, inline marks, links, images,
// tables, lists, task lists, code and quote blocks, media embeds) and
// removes scripts, event handlers and unsafe URLs. svg and math are not
// admitted because their children cannot be vetted here.
func ScrubPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)
	p.AllowDataURIImages()

	p.AllowElements(
		"p", "br", "hr", "div", "span",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"b", "strong", "i", "em", "u", "s", "del", "ins", "mark",
		"sub", "sup", "code", "kbd", "samp", "q",
		"pre", "blockquote", "figure", "figcaption",
	)
	p.AllowLists()
	p.AllowTables()
	p.AllowImages()

	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")

	p.AllowAttrs("data-type").Matching(taskListType).OnElements("ul")
	p.AllowAttrs("data-type").Matching(taskItemType).OnElements("li")
	p.AllowAttrs("data-checked").Matching(checkedFlag).OnElements("li")
	p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")

	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	p.AllowAttrs("class").Matching(codeLanguage).OnElements("code")

	p.AllowAttrs("src", "title").OnElements("iframe", "video", "audio", "embed")
	p.AllowAttrs("width", "height").Matching(mediaDimension).OnElements("iframe", "video", "embed", "img")
	p.AllowAttrs("controls").OnElements("video", "audio")
	p.AllowAttrs("allowfullscreen", "frameborder").OnElements("iframe")

	return p
}

var defaultScrubPolicy = ScrubPolicy()

// Scrub passes markup through the default allow-list policy.
func Scrub(raw string) string {
	return defaultScrubPolicy.Sanitize(raw)
}
