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

const guardianBaseURL = "https://content.guardianapis.com"

// GuardianAdapter fetches the newest stories from the Guardian content API.
type GuardianAdapter struct {
	source  article.Source
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGuardianAdapter creates an adapter for the Guardian search endpoint.
func NewGuardianAdapter(source article.Source, apiKey string, timeout time.Duration) *GuardianAdapter {
	baseURL := source.URL
	if baseURL == "" {
		baseURL = guardianBaseURL
	}

	return &GuardianAdapter{
		source:  source,
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *GuardianAdapter) Source() article.Source {
	return a.source
}

type guardianResponse struct {
	Response struct {
		Status  string `json:"status"`
		Results []struct {
			WebURL             string `json:"webUrl"`
			WebTitle           string `json:"webTitle"`
			WebPublicationDate string `json:"webPublicationDate"`
			Fields             struct {
				TrailText string `json:"trailText"`
				BodyText  string `json:"bodyText"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

func (a *GuardianAdapter) Fetch(ctx context.Context) ([]RawArticle, error) {
	if a.apiKey == "" {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: fmt.Errorf("no API key configured")}
	}

	params := url.Values{}
	params.Set("api-key", a.apiKey)
	params.Set("show-fields", "trailText,bodyText")
	params.Set("page-size", "50")
	params.Set("order-by", "newest")

	endpoint := fmt.Sprintf("%s/search?%s", a.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: err}
	}

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

	var body guardianResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamSourceError{Source: a.source.Name, Err: err}
	}

	if body.Response.Status != "ok" {
		return nil, &UpstreamSourceError{
			Source: a.source.Name,
			Err:    fmt.Errorf("api status %q", body.Response.Status),
		}
	}

	articles := make([]RawArticle, 0, len(body.Response.Results))

	for _, item := range body.Response.Results {
		if item.WebURL == "" || item.WebTitle == "" {
			continue
		}

		published := time.Now().UTC()
		if t, err := dateparse.ParseAny(item.WebPublicationDate); err == nil {
			published = t.UTC()
		}

		articles = append(articles, RawArticle{
			URL:         item.WebURL,
			Title:       item.WebTitle,
			Content:     item.Fields.BodyText,
			Summary:     item.Fields.TrailText,
			SourceName:  a.source.Name,
			PublishedAt: published,
			Language:    a.source.Language,
			Country:     a.source.Country,
		})
	}

	return articles, nil
}
