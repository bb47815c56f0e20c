// Package ingest fetches raw articles from the configured upstream sources.
package ingest

import (
	"context"
	"fmt"
	"time"

	"trendpulse/internal/domain/article"
)

const userAgent = "trendpulse/1.0"

// RawArticle is an article as delivered by an upstream source, before any
// normalization or enrichment.
type RawArticle struct {
	URL         string
	Title       string
	Content     string
	Summary     string
	SourceName  string
	PublishedAt time.Time
	Language    string
	Country     string
}

// SourceAdapter fetches the current batch of articles from one source.
type SourceAdapter interface {
	Source() article.Source
	Fetch(ctx context.Context) ([]RawArticle, error)
}

// UpstreamSourceError marks a failure of a single upstream source. One
// failing source never aborts the whole fetch cycle.
type UpstreamSourceError struct {
	Source string
	Err    error
}

func (e *UpstreamSourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *UpstreamSourceError) Unwrap() error {
	return e.Err
}
