package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/pastehtml/pkg/fetcher"
	"github.com/jmylchreest/pastehtml/pkg/source"
)

const stdinName = "stdin"

// readInputs loads every named file or URL, or stdin when there are none.
// mimeHint overrides extension and Content-Type based typing for all inputs.
func readInputs(ctx context.Context, args []string, mimeHint string, stdin io.Reader, f fetcher.Fetcher) ([]source.Document, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	docs := make([]source.Document, 0, len(args))
	for _, arg := range args {
		if fetcher.IsURL(arg) {
			doc, err := f.Fetch(ctx, arg)
			if err != nil {
				return nil, err
			}
			if mimeHint != "" {
				doc.MIME = mimeHint
			}
			docs = append(docs, doc)
			continue
		}

		var (
			data []byte
			err  error
			name = arg
		)
		if arg == "-" {
			name = stdinName
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(arg) //#nosec G304 -- CLI reads user-specified files
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		mime := mimeHint
		if mime == "" {
			mime = mimeFromPath(arg)
		}
		docs = append(docs, source.Document{
			Content: string(data),
			MIME:    mime,
			Name:    name,
		})
	}
	return docs, nil
}

// mimeFromPath maps known extensions to a MIME type. Anything else is
// left to content detection.
func mimeFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "html", "htm", "md", "markdown", "txt":
		return source.NormalizeMIME(ext)
	default:
		return ""
	}
}

// newFetcher reads one byte past maxBytes so oversized pages still trip
// the normalizer's size guard instead of being silently truncated.
func newFetcher(timeout time.Duration, maxBytes int64) fetcher.Fetcher {
	cfg := fetcher.StaticConfig{Timeout: timeout}
	if maxBytes > 0 {
		cfg.MaxBodySize = int(maxBytes) + 1
	}
	return fetcher.NewStatic(cfg)
}

// parseSize accepts human sizes such as "512KB" or "10MiB". Empty and
// "0" mean no limit.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}
