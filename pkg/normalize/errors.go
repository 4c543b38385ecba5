package normalize

import (
	"errors"

	"github.com/jmylchreest/pastehtml/pkg/source"
)

var (
	// ErrInputTooLarge is returned when a document exceeds Config.MaxInputBytes.
	ErrInputTooLarge = errors.New("input too large")

	// ErrUnsupportedFormat is returned when a document's MIME type cannot be
	// converted to HTML.
	// Re-exported from pkg/source.
	ErrUnsupportedFormat = source.ErrUnsupportedFormat

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)
