package ingest

import (
	"context"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"trendpulse/internal/domain/article"
)

const maxFeedEntries = 50

// RSSAdapter fetches articles from one RSS or Atom feed.
type RSSAdapter struct {
	source article.Source
	parser *gofeed.Parser
}

// NewRSSAdapter creates an adapter for the given feed source.
func NewRSSAdapter(source article.Source, timeout time.Duration) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}

	return &RSSAdapter{
		source: source,
		parser: parser,
	}
}

func (a *RSSAdapter) Source() article.Source {
	return a.source
}

func (a *RSSAdapter) Fetch(ctx context.Context) ([]RawArticle, error) {
	feed, err := a.parser.ParseURLWithContext(a.source.URL, ctx)
	if err != nil {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: err}
	}

	items := feed.Items
	if len(items) > maxFeedEntries {
		items = items[:maxFeedEntries]
	}

	articles := make([]RawArticle, 0, len(items))

	for _, item := range items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		articles = append(articles, RawArticle{
			URL:         item.Link,
			Title:       item.Title,
			Content:     item.Content,
			Summary:     item.Description,
			SourceName:  a.source.Name,
			PublishedAt: itemPublished(item),
			Language:    a.source.Language,
			Country:     a.source.Country,
		})
	}

	return articles, nil
}

// itemPublished resolves the best available timestamp for a feed item.
// Items without any parseable date default to now, so they are never dropped
// for a malformed header.
func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}

	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}

	if item.Published != "" {
		if t, err := dateparse.ParseAny(item.Published); err == nil {
			return t.UTC()
		}
	}

	return time.Now().UTC()
}
