package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/article"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/service/ingest"
	"trendpulse/internal/service/trending"
)

type fakeArticleStore struct {
	saved     []article.Article
	countries []string
	deleted   int64
}

func (f *fakeArticleStore) Save(_ context.Context, articles []article.Article) (int, error) {
	f.saved = append(f.saved, articles...)

	return len(articles), nil
}

func (f *fakeArticleStore) ActiveCountries(context.Context, time.Time) ([]string, error) {
	return f.countries, nil
}

func (f *fakeArticleStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return f.deleted, nil
}

type fakeTrendStore struct {
	buckets     []trend.TopicTrend
	predictions []trend.Prediction
	live        []trend.LiveTopic
	deleted     int64
}

func (f *fakeTrendStore) UpsertBuckets(_ context.Context, buckets []trend.TopicTrend) error {
	f.buckets = append(f.buckets, buckets...)

	return nil
}

func (f *fakeTrendStore) SavePredictions(_ context.Context, predictions []trend.Prediction) error {
	f.predictions = append(f.predictions, predictions...)

	return nil
}

func (f *fakeTrendStore) Live(context.Context, time.Time, int) ([]trend.LiveTopic, error) {
	return f.live, nil
}

func (f *fakeTrendStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return f.deleted, nil
}

type fakeStatsReader struct{}

func (fakeStatsReader) DailyStats(context.Context, string, string, time.Time, time.Time) ([]trend.DayStat, error) {
	return nil, nil
}

type rulesOnlyClassifier struct{}

func (rulesOnlyClassifier) Classify(_ context.Context, title, _ string) article.Classification {
	return article.Classification{Topic: "Politics & Elections", Confidence: 0.5, Method: article.MethodRuleBased}
}

func newTestPipeline(articles *fakeArticleStore, trends *fakeTrendStore) *Pipeline {
	logger := zerolog.Nop()
	engine := trending.NewEngine(fakeStatsReader{}, trending.DefaultConfig(), &logger)
	fetcher := ingest.NewManager(nil, ingest.ManagerConfig{}, &logger)

	return New(fetcher, rulesOnlyClassifier{}, engine, articles, trends, nil, Config{
		TrendWindowDays:      7,
		ArticleRetentionDays: 30,
		TrendRetentionDays:   90,
	}, &logger)
}

func TestDedupe(t *testing.T) {
	raw := []ingest.RawArticle{
		{URL: "https://example.com/a", Title: "Markets rally after surprise rate cut decision"},
		{URL: "https://example.com/a", Title: "Exact URL duplicate"},
		{URL: "https://example.com/b", Title: "Markets rally after surprise rate cut decision today"},
		{URL: "https://example.com/c", Title: "Parliament votes on new climate bill"},
		{URL: "", Title: "No URL"},
		{URL: "https://example.com/d", Title: ""},
	}

	kept := dedupe(raw)

	require.Len(t, kept, 2)
	assert.Equal(t, "https://example.com/a", kept[0].URL)
	assert.Equal(t, "https://example.com/c", kept[1].URL)
}

func TestEnrich(t *testing.T) {
	p := newTestPipeline(&fakeArticleStore{}, &fakeTrendStore{})

	raw := ingest.RawArticle{
		URL:         "https://example.com/story",
		Title:       "<b>Parliament</b> votes in London",
		Content:     "The vote in London was a great success for the government.",
		SourceName:  "Test Feed",
		PublishedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}

	a := p.enrich(context.Background(), raw)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Parliament votes in London", a.Title, "HTML is stripped")
	assert.Equal(t, "Politics & Elections", a.Topic)
	assert.Equal(t, "United Kingdom", a.Country, "London resolves to the UK")
	assert.Greater(t, a.SentimentScore, 0.0)
	assert.Equal(t, "en", a.Language)
	assert.NotZero(t, a.WordCount)
	assert.NotEmpty(t, a.Keywords)
	assert.False(t, a.ScrapedAt.IsZero())
}

func TestRunTrendCycleCoversAllTopicsAndScopes(t *testing.T) {
	articles := &fakeArticleStore{countries: []string{"France", "Japan"}}
	trends := &fakeTrendStore{}
	p := newTestPipeline(articles, trends)

	require.NoError(t, p.RunTrendCycle(context.Background()))

	// 10 topics x (global + 2 countries) x 7 days.
	assert.Len(t, trends.buckets, 10*3*7)
	assert.Len(t, trends.predictions, 10*3)

	scopes := map[string]struct{}{}
	for _, b := range trends.buckets {
		scopes[b.Country] = struct{}{}
	}

	assert.Contains(t, scopes, trend.GlobalCountry)
	assert.Contains(t, scopes, "France")
	assert.Contains(t, scopes, "Japan")

	for _, pr := range trends.predictions {
		assert.Equal(t, ModelVersion, pr.ModelVersion)
		assert.False(t, pr.PredictionDate.IsZero())
	}
}

func TestRunRetention(t *testing.T) {
	articles := &fakeArticleStore{deleted: 12}
	trends := &fakeTrendStore{deleted: 3}
	p := newTestPipeline(articles, trends)

	require.NoError(t, p.RunRetention(context.Background()))
}
