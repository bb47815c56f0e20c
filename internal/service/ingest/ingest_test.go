package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"trendpulse/internal/domain/article"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Parliament votes on new climate bill</title>
      <link>https://example.com/climate-bill</link>
      <description>The vote passed narrowly.</description>
      <pubDate>Mon, 02 Mar 2026 10:30:00 GMT</pubDate>
    </item>
    <item>
      <title>Untitled item without a link</title>
    </item>
  </channel>
</rss>`

func rssSource(url string) article.Source {
	return article.Source{
		Name:     "Test Feed",
		URL:      url,
		Kind:     article.KindRSS,
		Country:  "United Kingdom",
		Language: "en",
		Active:   true,
	}
}

func TestRSSAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	adapter := NewRSSAdapter(rssSource(server.URL), 5*time.Second)

	articles, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1, "items without a link are dropped")

	a := articles[0]
	assert.Equal(t, "https://example.com/climate-bill", a.URL)
	assert.Equal(t, "Parliament votes on new climate bill", a.Title)
	assert.Equal(t, "The vote passed narrowly.", a.Summary)
	assert.Equal(t, "Test Feed", a.SourceName)
	assert.Equal(t, "United Kingdom", a.Country)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), a.PublishedAt)
}

func TestRSSAdapterFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewRSSAdapter(rssSource(server.URL), 5*time.Second)

	_, err := adapter.Fetch(context.Background())

	var srcErr *UpstreamSourceError

	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "Test Feed", srcErr.Source)
}

func TestNewsAPIAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "Example Times"},
					"title": "Markets rally on rate cut",
					"description": "Stocks surged after the announcement.",
					"url": "https://example.com/markets",
					"publishedAt": "2026-03-02T08:00:00Z"
				},
				{"title": "No URL here"}
			]
		}`))
	}))
	defer server.Close()

	source := article.Source{Name: "NewsAPI", URL: server.URL, Kind: article.KindNewsAPI, Language: "en", Active: true}
	adapter := NewNewsAPIAdapter(source, "secret", 5*time.Second)

	articles, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)

	assert.Equal(t, "Example Times", articles[0].SourceName, "per-article source name wins")
	assert.Equal(t, "Markets rally on rate cut", articles[0].Title)
}

func TestNewsAPIAdapterNoKey(t *testing.T) {
	source := article.Source{Name: "NewsAPI", Kind: article.KindNewsAPI, Active: true}
	adapter := NewNewsAPIAdapter(source, "", 5*time.Second)

	_, err := adapter.Fetch(context.Background())

	var srcErr *UpstreamSourceError

	require.True(t, errors.As(err, &srcErr))
}

func TestGuardianAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": {
				"status": "ok",
				"results": [
					{
						"webUrl": "https://example.com/guardian-story",
						"webTitle": "New vaccine trial shows promise",
						"webPublicationDate": "2026-03-02T09:15:00Z",
						"fields": {
							"trailText": "Early results exceed expectations.",
							"bodyText": "The trial enrolled two thousand volunteers."
						}
					}
				]
			}
		}`))
	}))
	defer server.Close()

	source := article.Source{Name: "The Guardian", URL: server.URL, Kind: article.KindGuardian, Country: "United Kingdom", Language: "en", Active: true}
	adapter := NewGuardianAdapter(source, "secret", 5*time.Second)

	articles, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)

	assert.Equal(t, "New vaccine trial shows promise", articles[0].Title)
	assert.Equal(t, "The trial enrolled two thousand volunteers.", articles[0].Content)
	assert.Equal(t, "Early results exceed expectations.", articles[0].Summary)
}

type stubAdapter struct {
	source   article.Source
	articles []RawArticle
	err      error
}

func (s *stubAdapter) Source() article.Source { return s.source }

func (s *stubAdapter) Fetch(context.Context) ([]RawArticle, error) {
	return s.articles, s.err
}

func TestManagerSkipsFailedSources(t *testing.T) {
	logger := zerolog.Nop()

	manager := &Manager{
		adapters: []SourceAdapter{
			&stubAdapter{
				source:   article.Source{Name: "good"},
				articles: []RawArticle{{URL: "https://example.com/a", Title: "A"}},
			},
			&stubAdapter{
				source: article.Source{Name: "bad"},
				err:    &UpstreamSourceError{Source: "bad", Err: errors.New("timeout")},
			},
			&stubAdapter{
				source:   article.Source{Name: "also-good"},
				articles: []RawArticle{{URL: "https://example.com/b", Title: "B"}},
			},
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
		timeout: time.Second,
		logger:  &logger,
	}

	articles, failed := manager.FetchAll(context.Background())

	assert.Len(t, articles, 2, "healthy sources still deliver")
	assert.Equal(t, 1, failed)
}

func TestManagerBuildsAdaptersFromCatalog(t *testing.T) {
	logger := zerolog.Nop()

	sources := []article.Source{
		{Name: "feed", Kind: article.KindRSS, URL: "https://example.com/rss", Active: true},
		{Name: "disabled", Kind: article.KindRSS, URL: "https://example.com/off", Active: false},
		{Name: "newsapi", Kind: article.KindNewsAPI, Active: true},
		{Name: "guardian", Kind: article.KindGuardian, Active: true},
	}

	manager := NewManager(sources, ManagerConfig{}, &logger)

	names := make([]string, 0, len(manager.Sources()))
	for _, src := range manager.Sources() {
		names = append(names, src.Name)
	}

	assert.Equal(t, []string{"feed", "newsapi", "guardian"}, names, "disabled sources are skipped")
}
