package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trendpulse/internal/domain/article"
)

// sourceEntry is the YAML shape of one catalog entry.
type sourceEntry struct {
	Name        string  `yaml:"name"`
	URL         string  `yaml:"url"`
	Kind        string  `yaml:"kind"`
	Credibility float64 `yaml:"credibility"`
	Country     string  `yaml:"country"`
	Language    string  `yaml:"language"`
	Disabled    bool    `yaml:"disabled"`
}

type sourceCatalog struct {
	Sources []sourceEntry `yaml:"sources"`
}

const defaultCredibility = 0.8

// LoadSources reads the source catalog from the given YAML file. An empty
// path returns the built-in default catalog.
func LoadSources(path string) ([]article.Source, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source catalog: %w", err)
	}

	var catalog sourceCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse source catalog: %w", err)
	}

	sources := make([]article.Source, 0, len(catalog.Sources))

	for _, entry := range catalog.Sources {
		if entry.Name == "" {
			return nil, fmt.Errorf("source catalog: entry without a name")
		}

		kind := article.SourceKind(entry.Kind)
		switch kind {
		case article.KindRSS, article.KindNewsAPI, article.KindGuardian:
		default:
			return nil, fmt.Errorf("source catalog: %s: unknown kind %q", entry.Name, entry.Kind)
		}

		if kind == article.KindRSS && entry.URL == "" {
			return nil, fmt.Errorf("source catalog: %s: rss source without url", entry.Name)
		}

		credibility := entry.Credibility
		if credibility == 0 {
			credibility = defaultCredibility
		}

		language := entry.Language
		if language == "" {
			language = "en"
		}

		sources = append(sources, article.Source{
			Name:        entry.Name,
			URL:         entry.URL,
			Kind:        kind,
			Credibility: credibility,
			Country:     entry.Country,
			Language:    language,
			Active:      !entry.Disabled,
		})
	}

	return sources, nil
}

// DefaultSources is the catalog used when no SOURCES_PATH is configured.
func DefaultSources() []article.Source {
	rss := []struct {
		name    string
		url     string
		country string
	}{
		{"BBC News", "http://feeds.bbci.co.uk/news/rss.xml", "United Kingdom"},
		{"CNN", "https://rss.cnn.com/rss/edition.rss", "United States"},
		{"Reuters", "https://feeds.reuters.com/reuters/topNews", "United Kingdom"},
		{"NPR", "https://feeds.npr.org/1001/rss.xml", "United States"},
		{"Sky News", "https://feeds.skynews.com/feeds/rss/world.xml", "United Kingdom"},
	}

	sources := make([]article.Source, 0, len(rss)+2)

	for _, feed := range rss {
		sources = append(sources, article.Source{
			Name:        feed.name,
			URL:         feed.url,
			Kind:        article.KindRSS,
			Credibility: 0.9,
			Country:     feed.country,
			Language:    "en",
			Active:      true,
		})
	}

	sources = append(sources,
		article.Source{
			Name:        "NewsAPI",
			Kind:        article.KindNewsAPI,
			Credibility: defaultCredibility,
			Language:    "en",
			Active:      true,
		},
		article.Source{
			Name:        "The Guardian",
			URL:         "https://content.guardianapis.com",
			Kind:        article.KindGuardian,
			Credibility: 0.9,
			Country:     "United Kingdom",
			Language:    "en",
			Active:      true,
		},
	)

	return sources
}
