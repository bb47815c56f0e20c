package article

import (
	"time"
)

// ClassificationMethod identifies how an article's topic was decided.
type ClassificationMethod string

const (
	// MethodNeural means the external model's answer was confident enough
	// to stand on its own.
	MethodNeural ClassificationMethod = "neural"

	// MethodRuleBased means the keyword scorer decided, either because no
	// model is configured or because the model call failed.
	MethodRuleBased ClassificationMethod = "rule_based"

	// MethodBlended means a low-confidence model answer was confirmed by
	// the keyword scorer.
	MethodBlended ClassificationMethod = "blended"
)

// Classification is the outcome of topic classification for one article.
type Classification struct {
	Topic      string
	Confidence float64
	Method     ClassificationMethod
}

// Sentiment is a score in [-1, 1] with an estimate of how sure the scorer is.
type Sentiment struct {
	Score      float64
	Confidence float64
}

// GeoResolution maps detected location mentions to a single country.
type GeoResolution struct {
	Country    string
	Mentions   []string
	Confidence float64
}

// Article is a normalized, classified, geotagged news article. Identity is
// the source URL; articles are immutable once persisted except for periodic
// sentiment re-scoring.
type Article struct {
	ID          string
	URL         string
	Title       string
	Content     string
	Summary     string
	SourceName  string
	PublishedAt time.Time
	ScrapedAt   time.Time

	Country       string
	Locations     []string
	GeoConfidence float64

	Topic                string
	TopicConfidence      float64
	ClassificationMethod ClassificationMethod

	SentimentScore      float64
	SentimentConfidence float64

	Keywords  []string
	Language  string
	WordCount int
}

// SourceKind distinguishes the fetch protocol for a configured source.
type SourceKind string

const (
	KindRSS      SourceKind = "rss"
	KindNewsAPI  SourceKind = "newsapi"
	KindGuardian SourceKind = "guardian"
)

// Source is a configured news source. It is configuration data synced into
// storage at startup, not a computed entity.
type Source struct {
	Name        string
	URL         string
	Kind        SourceKind
	Credibility float64
	Country     string
	Language    string
	Active      bool
}

// Statistics is a corpus-wide summary used by the statistics endpoint.
type Statistics struct {
	TotalArticles    int64            `json:"total_articles"`
	ArticlesByTopic  map[string]int64 `json:"articles_by_topic"`
	ArticlesBySource map[string]int64 `json:"articles_by_source"`
	TopCountries     map[string]int64 `json:"top_countries"`
	OldestArticle    *time.Time       `json:"oldest_article,omitempty"`
	NewestArticle    *time.Time       `json:"newest_article,omitempty"`
	TrendRecords     int64            `json:"trend_records"`
}

// SearchQuery filters article searches.
type SearchQuery struct {
	Query     string
	Topics    []string
	Countries []string
	Start     *time.Time
	End       *time.Time
	Limit     int
	Offset    int
}
