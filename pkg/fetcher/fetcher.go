// Package fetcher retrieves remote documents so they can be normalized like
// a local paste.
package fetcher

import (
	"context"
	"strings"

	"github.com/jmylchreest/pastehtml/pkg/source"
)

// Fetcher abstracts document retrieval.
type Fetcher interface {
	// Fetch retrieves url. The Content-Type header becomes the document's
	// MIME hint.
	Fetch(ctx context.Context, url string) (source.Document, error)

	// Type returns a string identifying the fetcher type.
	Type() string
}

// IsURL reports whether arg names an http(s) resource rather than a file.
func IsURL(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
