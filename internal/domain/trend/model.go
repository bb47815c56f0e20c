package trend

import (
	"time"
)

// GlobalCountry is the country key used when a bucket aggregates articles
// from every country.
const GlobalCountry = "global"

// Direction labels where a topic's article volume is heading.
type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionStable  Direction = "stable"
)

// Bucket is one calendar day of aggregated article activity for a
// (topic, country) pair. AvgSentiment is 0 (neutral) when the bucket holds
// no articles.
type Bucket struct {
	Date              time.Time `json:"date"`
	ArticleCount      int       `json:"article_count"`
	AvgSentiment      float64   `json:"avg_sentiment"`
	SentimentVariance float64   `json:"sentiment_variance"`
}

// Series is a contiguous per-day time series for one topic and country,
// one bucket per calendar day in the requested range.
type Series struct {
	Topic   string   `json:"topic"`
	Country string   `json:"country"`
	Buckets []Bucket `json:"buckets"`
}

// Metrics is the trend verdict derived from a series.
type Metrics struct {
	TotalArticles      int       `json:"total_articles"`
	Direction          Direction `json:"trend_direction"`
	Score              float64   `json:"trend_score"`
	PredictedNextCount float64   `json:"predicted_next_count"`
	PeakDate           time.Time `json:"peak_date"`
	PeakCount          int       `json:"peak_count"`
}

// TopicTrend is a persisted derived bucket. Identity is
// (topic, country-or-global, bucket date); each recomputation replaces the
// derived fields atomically from a full recount of the bucket's articles.
type TopicTrend struct {
	Topic             string    `json:"topic"`
	Country           string    `json:"country"`
	Date              time.Time `json:"date"`
	ArticleCount      int       `json:"article_count"`
	AvgSentiment      float64   `json:"avg_sentiment"`
	SentimentVariance float64   `json:"sentiment_variance"`
	TrendScore        float64   `json:"trend_score"`
	TrendDirection    Direction `json:"trend_direction"`
	PredictedNext     *float64  `json:"predicted_next_count,omitempty"`
	ComputedAt        time.Time `json:"computed_at"`
}

// Prediction is a persisted short-horizon forecast for a topic and country.
type Prediction struct {
	Topic          string    `json:"topic"`
	Country        string    `json:"country"`
	PredictionDate time.Time `json:"prediction_date"`
	PredictedScore float64   `json:"predicted_score"`
	Confidence     float64   `json:"confidence"`
	ModelVersion   string    `json:"model_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// CountryAggregate summarizes trend activity for one country over a window,
// used by the map view.
type CountryAggregate struct {
	Country      string    `json:"country"`
	ArticleCount int       `json:"article_count"`
	TrendScore   float64   `json:"trend_score"`
	AvgSentiment float64   `json:"sentiment_avg"`
	LatestDate   time.Time `json:"latest_date"`
	DataPoints   int       `json:"data_points"`
}

// CountryTopicStat summarizes one topic's activity inside a single country.
type CountryTopicStat struct {
	Topic        string    `json:"topic"`
	ArticleCount int       `json:"article_count"`
	TrendScore   float64   `json:"trend_score"`
	AvgSentiment float64   `json:"avg_sentiment"`
	Direction    Direction `json:"trend_direction"`
}

// LiveTopic is one entry in the live trending feed: a topic aggregated
// across the countries it is active in during the last 24 hours.
type LiveTopic struct {
	Topic          string  `json:"topic"`
	TopCountry     string  `json:"country"`
	TrendScore     float64 `json:"trend_score"`
	ArticleCount   int     `json:"article_count"`
	AvgSentiment   float64 `json:"sentiment"`
	CountriesCount int     `json:"countries_count"`
}
