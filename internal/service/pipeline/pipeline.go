// Package pipeline orchestrates the periodic ingestion, trend recomputation
// and retention jobs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trendpulse/internal/adapter/events"
	"trendpulse/internal/domain/article"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/observability"
	"trendpulse/internal/service/geo"
	"trendpulse/internal/service/ingest"
	"trendpulse/internal/service/preprocess"
	"trendpulse/internal/service/sentiment"
	"trendpulse/internal/service/trending"
)

// ModelVersion tags persisted forecasts with the algorithm that produced
// them.
const ModelVersion = "linear_regression_v1"

// Classifier decides an article's topic.
type Classifier interface {
	Classify(ctx context.Context, title, content string) article.Classification
}

// ArticleStore is the article persistence the pipeline needs.
type ArticleStore interface {
	Save(ctx context.Context, articles []article.Article) (int, error)
	ActiveCountries(ctx context.Context, since time.Time) ([]string, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// TrendStore is the trend persistence the pipeline needs.
type TrendStore interface {
	UpsertBuckets(ctx context.Context, buckets []trend.TopicTrend) error
	SavePredictions(ctx context.Context, predictions []trend.Prediction) error
	Live(ctx context.Context, since time.Time, limit int) ([]trend.LiveTopic, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config tunes the pipeline's windows and retention.
type Config struct {
	TrendWindowDays      int
	ArticleRetentionDays int
	TrendRetentionDays   int
}

// Pipeline wires the ingestion, enrichment and trend stages together.
type Pipeline struct {
	fetcher      *ingest.Manager
	classifier   Classifier
	engine       *trending.Engine
	articleStore ArticleStore
	trendStore   TrendStore
	bus          *events.Bus
	cfg          Config
	logger       *zerolog.Logger
}

// New creates a pipeline.
func New(
	fetcher *ingest.Manager,
	classifier Classifier,
	engine *trending.Engine,
	articleStore ArticleStore,
	trendStore TrendStore,
	bus *events.Bus,
	cfg Config,
	logger *zerolog.Logger,
) *Pipeline {
	if cfg.TrendWindowDays <= 0 {
		cfg.TrendWindowDays = 30
	}

	if cfg.ArticleRetentionDays <= 0 {
		cfg.ArticleRetentionDays = 30
	}

	if cfg.TrendRetentionDays <= 0 {
		cfg.TrendRetentionDays = 90
	}

	return &Pipeline{
		fetcher:      fetcher,
		classifier:   classifier,
		engine:       engine,
		articleStore: articleStore,
		trendStore:   trendStore,
		bus:          bus,
		cfg:          cfg,
		logger:       logger,
	}
}

// RunFetchCycle fetches every source, enriches the articles and persists
// them. Already-seen URLs are skipped by the store.
func (p *Pipeline) RunFetchCycle(ctx context.Context) error {
	started := time.Now()

	raw, failedSources := p.fetcher.FetchAll(ctx)
	observability.SourceFailures.Add(float64(failedSources))

	for _, r := range raw {
		observability.ArticlesFetched.WithLabelValues(r.SourceName).Inc()
	}

	deduped := dedupe(raw)

	articles := make([]article.Article, 0, len(deduped))
	for _, r := range deduped {
		articles = append(articles, p.enrich(ctx, r))
	}

	stored, err := p.articleStore.Save(ctx, articles)
	if err != nil {
		return fmt.Errorf("persist fetched articles: %w", err)
	}

	observability.ArticlesStored.Add(float64(stored))
	observability.FetchCycleDuration.Observe(time.Since(started).Seconds())

	p.logger.Info().
		Int("fetched", len(raw)).
		Int("deduped", len(deduped)).
		Int("stored", stored).
		Int("failed_sources", failedSources).
		Dur("took", time.Since(started)).
		Msg("fetch cycle finished")

	p.bus.PublishIngestSummary(events.IngestSummary{
		Fetched:   len(raw),
		Stored:    stored,
		Failed:    failedSources,
		FetchedAt: time.Now().UTC(),
	})

	return nil
}

// enrich turns one raw article into a fully classified, scored and geotagged
// record.
func (p *Pipeline) enrich(ctx context.Context, raw ingest.RawArticle) article.Article {
	title := preprocess.CleanText(raw.Title)

	content := preprocess.CleanText(raw.Content)
	if content == "" {
		content = preprocess.CleanText(raw.Summary)
	}

	classification := p.classifier.Classify(ctx, title, content)
	observability.ClassificationMethodUsed.WithLabelValues(string(classification.Method)).Inc()

	mood := sentiment.Analyze(title + " " + content)

	resolution := geo.Resolve(title + " " + content)
	country := resolution.Country
	if country == "" {
		country = raw.Country
	}

	language := raw.Language
	if language == "" {
		language = "en"
	}

	return article.Article{
		ID:          uuid.NewString(),
		URL:         raw.URL,
		Title:       title,
		Content:     content,
		Summary:     preprocess.Summarize(content, title),
		SourceName:  raw.SourceName,
		PublishedAt: raw.PublishedAt.UTC(),
		ScrapedAt:   time.Now().UTC(),

		Country:       country,
		Locations:     resolution.Mentions,
		GeoConfidence: resolution.Confidence,

		Topic:                classification.Topic,
		TopicConfidence:      classification.Confidence,
		ClassificationMethod: classification.Method,

		SentimentScore:      mood.Score,
		SentimentConfidence: mood.Confidence,

		Keywords:  preprocess.ExtractKeywords(title + " " + content),
		Language:  language,
		WordCount: preprocess.WordCount(content),
	}
}

// dedupe drops exact URL duplicates and near-identical titles within the
// batch.
func dedupe(raw []ingest.RawArticle) []ingest.RawArticle {
	seenURLs := map[string]struct{}{}

	var (
		kept   []ingest.RawArticle
		titles []string
	)

	for _, r := range raw {
		if r.URL == "" || r.Title == "" {
			continue
		}

		if _, ok := seenURLs[r.URL]; ok {
			continue
		}

		duplicate := false

		for _, title := range titles {
			if preprocess.SimilarTitles(title, r.Title) {
				duplicate = true

				break
			}
		}

		if duplicate {
			continue
		}

		seenURLs[r.URL] = struct{}{}
		titles = append(titles, r.Title)
		kept = append(kept, r)
	}

	return kept
}

// RunTrendCycle recomputes the trailing window of trend buckets for every
// topic, globally and per active country, and refreshes the forecasts.
func (p *Pipeline) RunTrendCycle(ctx context.Context) error {
	started := time.Now()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(p.cfg.TrendWindowDays - 1))

	countries, err := p.articleStore.ActiveCountries(ctx, start)
	if err != nil {
		return fmt.Errorf("list active countries: %w", err)
	}

	scopes := append([]string{""}, countries...)

	var (
		buckets     []trend.TopicTrend
		predictions []trend.Prediction
	)

	for _, topic := range trend.Topics {
		for _, country := range scopes {
			series, metrics, err := p.engine.ComputeTrend(ctx, topic, country, start, end)
			if err != nil {
				return fmt.Errorf("compute trend %s/%s: %w", topic, country, err)
			}

			computedAt := time.Now().UTC()

			for _, b := range series.Buckets {
				row := trend.TopicTrend{
					Topic:             series.Topic,
					Country:           series.Country,
					Date:              b.Date,
					ArticleCount:      b.ArticleCount,
					AvgSentiment:      b.AvgSentiment,
					SentimentVariance: b.SentimentVariance,
					TrendScore:        metrics.Score,
					TrendDirection:    metrics.Direction,
					ComputedAt:        computedAt,
				}

				predicted := metrics.PredictedNextCount
				if predicted > 0 {
					row.PredictedNext = &predicted
				}

				buckets = append(buckets, row)
			}

			value, confidence := p.engine.Forecast(series)
			predictions = append(predictions, trend.Prediction{
				Topic:          series.Topic,
				Country:        series.Country,
				PredictionDate: trending.Day(end).AddDate(0, 0, 1),
				PredictedScore: value,
				Confidence:     confidence,
				ModelVersion:   ModelVersion,
				CreatedAt:      computedAt,
			})
		}
	}

	if err := p.trendStore.UpsertBuckets(ctx, buckets); err != nil {
		return fmt.Errorf("persist trend buckets: %w", err)
	}

	if err := p.trendStore.SavePredictions(ctx, predictions); err != nil {
		return fmt.Errorf("persist predictions: %w", err)
	}

	observability.TrendBucketsComputed.Add(float64(len(buckets)))
	observability.TrendCycleDuration.Observe(time.Since(started).Seconds())

	p.logger.Info().
		Int("buckets", len(buckets)).
		Int("predictions", len(predictions)).
		Int("countries", len(countries)).
		Dur("took", time.Since(started)).
		Msg("trend cycle finished")

	p.publishLiveUpdate(ctx)

	return nil
}

func (p *Pipeline) publishLiveUpdate(ctx context.Context) {
	topics, err := p.trendStore.Live(ctx, time.Now().UTC().AddDate(0, 0, -1), 10)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to load live topics for broadcast")

		return
	}

	p.bus.PublishTrendUpdate(events.TrendUpdate{
		Topics:     topics,
		ComputedAt: time.Now().UTC(),
	})
}

// RunRetention removes articles and trend rows past their retention windows.
func (p *Pipeline) RunRetention(ctx context.Context) error {
	now := time.Now().UTC()

	articleCutoff := now.AddDate(0, 0, -p.cfg.ArticleRetentionDays)
	trendCutoff := now.AddDate(0, 0, -p.cfg.TrendRetentionDays)

	articlesDeleted, err := p.articleStore.DeleteOlderThan(ctx, articleCutoff)
	if err != nil {
		return fmt.Errorf("delete old articles: %w", err)
	}

	trendsDeleted, err := p.trendStore.DeleteOlderThan(ctx, trendCutoff)
	if err != nil {
		return fmt.Errorf("delete old trend rows: %w", err)
	}

	observability.RetentionDeleted.WithLabelValues("articles").Add(float64(articlesDeleted))
	observability.RetentionDeleted.WithLabelValues("topic_trends").Add(float64(trendsDeleted))

	p.logger.Info().
		Int64("articles_deleted", articlesDeleted).
		Int64("trend_rows_deleted", trendsDeleted).
		Time("article_cutoff", articleCutoff).
		Time("trend_cutoff", trendCutoff).
		Msg("retention sweep finished")

	return nil
}
