package cleaner

import (
	"strings"

	"github.com/yosssi/gohtml"
)

// PrettyCleaner indents HTML for reading and diffing.
type PrettyCleaner struct{}

// NewPretty creates a pretty-printing cleaner.
func NewPretty() *PrettyCleaner {
	return &PrettyCleaner{}
}

// Clean formats the markup. Blank input stays blank.
func (c *PrettyCleaner) Clean(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	return gohtml.Format(html), nil
}

// Name returns the cleaner type.
func (c *PrettyCleaner) Name() string {
	return "pretty"
}
