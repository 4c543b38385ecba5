// Package cleaner provides interfaces and implementations for post-processing
// normalized HTML. Cleaners turn the editor dialect produced by
// pkg/normalize into the form a consumer needs (markdown, indented HTML).
package cleaner

// Cleaner transforms HTML content.
// *normalize.Normalizer satisfies it, so normalization can head a chain.
type Cleaner interface {
	// Clean transforms the input HTML.
	// The output format depends on the implementation (markdown, HTML, etc.).
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
