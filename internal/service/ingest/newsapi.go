package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/araddon/dateparse"

	"trendpulse/internal/domain/article"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIAdapter fetches top headlines from NewsAPI.
type NewsAPIAdapter struct {
	source  article.Source
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNewsAPIAdapter creates an adapter for the NewsAPI top-headlines endpoint.
func NewNewsAPIAdapter(source article.Source, apiKey string, timeout time.Duration) *NewsAPIAdapter {
	baseURL := source.URL
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}

	return &NewsAPIAdapter{
		source:  source,
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *NewsAPIAdapter) Source() article.Source {
	return a.source
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (a *NewsAPIAdapter) Fetch(ctx context.Context) ([]RawArticle, error) {
	if a.apiKey == "" {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: fmt.Errorf("no API key configured")}
	}

	params := url.Values{}
	params.Set("language", "en")
	params.Set("pageSize", "50")

	endpoint := fmt.Sprintf("%s/top-headlines?%s", a.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: err}
	}

	req.Header.Set("X-Api-Key", a.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamSourceError{
			Source: a.source.Name,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: err}
	}

	if body.Status != "ok" {
		return nil, &UpstreamSourceError{
			Source: a.source.Name,
			Err:    fmt.Errorf("api status %q: %s", body.Status, body.Message),
		}
	}

	articles := make([]RawArticle, 0, len(body.Articles))

	for _, item := range body.Articles {
		if item.URL == "" || item.Title == "" {
			continue
		}

		published := time.Now().UTC()
		if t, err := dateparse.ParseAny(item.PublishedAt); err == nil {
			published = t.UTC()
		}

		sourceName := item.Source.Name
		if sourceName == "" {
			sourceName = a.source.Name
		}

		articles = append(articles, RawArticle{
			URL:         item.URL,
			Title:       item.Title,
			Content:     item.Content,
			Summary:     item.Description,
			SourceName:  sourceName,
			PublishedAt: published,
			Language:    a.source.Language,
		})
	}

	return articles, nil
}
