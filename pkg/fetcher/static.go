package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/pastehtml/internal/logger"
	"github.com/jmylchreest/pastehtml/pkg/source"
)

const defaultUserAgent = "pastehtml (+https://github.com/jmylchreest/pastehtml)"

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBodySize truncates larger responses; 0 means colly's default.
	MaxBodySize int
}

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// StaticFetcher performs a single GET per document using Colly.
type StaticFetcher struct {
	config StaticConfig
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultStaticConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultStaticConfig().Timeout
	}
	return &StaticFetcher{config: cfg}
}

// Fetch retrieves url. Non-2xx responses are errors.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (source.Document, error) {
	doc := source.Document{Name: url}

	opts := []colly.CollectorOption{
		colly.UserAgent(f.config.UserAgent),
		colly.StdlibContext(ctx),
	}
	if f.config.MaxBodySize > 0 {
		opts = append(opts, colly.MaxBodySize(f.config.MaxBodySize))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.config.Timeout)

	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		doc.Content = string(r.Body)
		doc.MIME = r.Headers.Get("Content-Type")
		logger.Debug("fetch response received",
			"url", url,
			"status", r.StatusCode,
			"content_type", doc.MIME,
			"body_size", len(r.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch %s (status %d): %w", url, status, err)
	})

	if err := c.Visit(url); err != nil {
		return doc, fmt.Errorf("visit %s: %w", url, err)
	}
	if fetchErr != nil {
		return doc, fetchErr
	}
	return doc, nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}
