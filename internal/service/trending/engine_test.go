package trending

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/trend"
)

type fakeReader struct {
	stats []trend.DayStat
	err   error
}

func (f *fakeReader) DailyStats(_ context.Context, _, _ string, _, _ time.Time) ([]trend.DayStat, error) {
	return f.stats, f.err
}

func newTestEngine(reader trend.StatsReader) *Engine {
	logger := zerolog.Nop()

	return NewEngine(reader, DefaultConfig(), &logger)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return t.UTC()
}

func seriesFromCounts(counts ...int) trend.Series {
	s := trend.Series{Topic: "Politics & Elections", Country: trend.GlobalCountry}
	start := day("2026-01-01")

	for i, c := range counts {
		s.Buckets = append(s.Buckets, trend.Bucket{
			Date:         start.AddDate(0, 0, i),
			ArticleCount: c,
		})
	}

	return s
}

func TestComputeTrendEmptyWindow(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	series, metrics, err := engine.ComputeTrend(context.Background(),
		"Politics & Elections", "", day("2026-03-01"), day("2026-03-10"))
	require.NoError(t, err)

	require.Len(t, series.Buckets, 10, "one bucket per calendar day")

	for _, b := range series.Buckets {
		assert.Equal(t, 0, b.ArticleCount)
		assert.Equal(t, 0.0, b.AvgSentiment, "empty bucket sentiment is neutral")
		assert.Equal(t, 0.0, b.SentimentVariance)
	}

	assert.Equal(t, trend.DirectionStable, metrics.Direction)
	assert.Equal(t, 0.0, metrics.Score, "all-zero series scores 0")
	assert.Equal(t, trend.GlobalCountry, series.Country)
}

func TestComputeTrendSingleDay(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	series, _, err := engine.ComputeTrend(context.Background(),
		"Health & Medicine", "France", day("2026-03-01"), day("2026-03-01"))
	require.NoError(t, err)

	require.Len(t, series.Buckets, 1, "start == end produces exactly one bucket")
	assert.Equal(t, "France", series.Country)
}

func TestComputeTrendInvalidRange(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	_, _, err := engine.ComputeTrend(context.Background(),
		"Health & Medicine", "", day("2026-03-10"), day("2026-03-01"))
	require.ErrorIs(t, err, trend.ErrInvalidRange)
}

func TestComputeTrendUnknownTopic(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	_, _, err := engine.ComputeTrend(context.Background(),
		"Gardening", "", day("2026-03-01"), day("2026-03-02"))

	var unknownErr *trend.UnknownTopicError

	require.True(t, errors.As(err, &unknownErr))
}

func TestComputeTrendFuzzyTopic(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	series, _, err := engine.ComputeTrend(context.Background(),
		"Politics", "", day("2026-03-01"), day("2026-03-02"))
	require.NoError(t, err, "partial topic must resolve, not fail")
	assert.Equal(t, "Politics & Elections", series.Topic)
}

func TestComputeTrendSentimentStats(t *testing.T) {
	reader := &fakeReader{stats: []trend.DayStat{
		{
			Date:            day("2026-03-01"),
			ArticleCount:    4,
			SentimentSum:    1.0,  // scores 0.5, 0.5, 0.25, -0.25
			SentimentSqSum:  0.625,
			SentimentScored: 4,
		},
	}}
	engine := newTestEngine(reader)

	series, _, err := engine.ComputeTrend(context.Background(),
		"Business", "", day("2026-03-01"), day("2026-03-01"))
	require.NoError(t, err)

	b := series.Buckets[0]
	assert.Equal(t, 4, b.ArticleCount)
	assert.InDelta(t, 0.25, b.AvgSentiment, 1e-9)
	assert.InDelta(t, 0.09375, b.SentimentVariance, 1e-9)
}

func TestComputeTrendIdempotent(t *testing.T) {
	reader := &fakeReader{stats: []trend.DayStat{
		{Date: day("2026-03-02"), ArticleCount: 3, SentimentSum: 0.6, SentimentSqSum: 0.2, SentimentScored: 3},
		{Date: day("2026-03-05"), ArticleCount: 7, SentimentSum: -1.4, SentimentSqSum: 0.9, SentimentScored: 7},
	}}
	engine := newTestEngine(reader)

	run := func() []byte {
		series, metrics, err := engine.ComputeTrend(context.Background(),
			"Technology", "", day("2026-03-01"), day("2026-03-07"))
		require.NoError(t, err)

		out, err := json.Marshal(struct {
			S trend.Series
			M trend.Metrics
		}{series, metrics})
		require.NoError(t, err)

		return out
	}

	assert.Equal(t, run(), run(), "unchanged inputs must yield byte-identical output")
}

func TestComputeTrendPropagatesStorageError(t *testing.T) {
	engine := newTestEngine(&fakeReader{err: trend.ErrStorageUnavailable})

	_, _, err := engine.ComputeTrend(context.Background(),
		"Technology", "", day("2026-03-01"), day("2026-03-07"))
	require.ErrorIs(t, err, trend.ErrStorageUnavailable)
}

func TestDirectionInsufficientData(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	assert.Equal(t, trend.DirectionStable, engine.Direction(seriesFromCounts()))
	assert.Equal(t, trend.DirectionStable, engine.Direction(seriesFromCounts(5)))
	assert.Equal(t, trend.DirectionStable,
		engine.Direction(seriesFromCounts(0, 0, 9, 0, 0)),
		"one populated bucket is insufficient data")
}

func TestDirectionRisingLinear(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	counts := make([]int, 30)
	for i := range counts {
		counts[i] = i + 1 // 1/day up to 30/day
	}

	assert.Equal(t, trend.DirectionRising, engine.Direction(seriesFromCounts(counts...)))
}

func TestDirectionFalling(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	counts := make([]int, 30)
	for i := range counts {
		counts[i] = 30 - i
	}

	assert.Equal(t, trend.DirectionFalling, engine.Direction(seriesFromCounts(counts...)))
}

func TestDirectionStableFlat(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	counts := make([]int, 14)
	for i := range counts {
		counts[i] = 5
	}

	assert.Equal(t, trend.DirectionStable, engine.Direction(seriesFromCounts(counts...)))
}

func TestScoreZeroSeries(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	assert.Equal(t, 0.0, engine.Score(seriesFromCounts(0, 0, 0, 0, 0)))
	assert.Equal(t, 0.0, engine.Score(seriesFromCounts()))
}

func TestScoreMonotoneInEveryBucket(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	base := seriesFromCounts(2, 0, 5, 1, 3, 8, 0, 4)
	baseScore := engine.Score(base)

	for i := range base.Buckets {
		bumped := seriesFromCounts(2, 0, 5, 1, 3, 8, 0, 4)
		bumped.Buckets[i].ArticleCount++

		assert.GreaterOrEqual(t, engine.Score(bumped), baseScore,
			"raising bucket %d must not lower the score", i)
	}
}

func TestScoreTracksIncreaseRate(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	slow := make([]int, 10)
	fast := make([]int, 10)

	for i := range slow {
		slow[i] = i + 1
		fast[i] = 2 * (i + 1)
	}

	slowScore := engine.Score(seriesFromCounts(slow...))
	fastScore := engine.Score(seriesFromCounts(fast...))

	assert.Greater(t, slowScore, 0.0)
	assert.GreaterOrEqual(t, fastScore, slowScore)
}

func TestScoreBounded(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	huge := make([]int, 30)
	for i := range huge {
		huge[i] = 100000
	}

	score := engine.Score(seriesFromCounts(huge...))
	assert.Greater(t, score, 0.9)
	assert.Less(t, score, 1.0)
}

func TestPredictNextNaivePersistence(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	// Six populated buckets: below the regression threshold.
	series := seriesFromCounts(1, 2, 3, 4, 5, 6)
	assert.Equal(t, 6.0, engine.PredictNext(series),
		"insufficient history falls back to the last observed count")

	// Trailing zero days do not change the last observed count.
	series = seriesFromCounts(1, 2, 3, 4, 5, 6, 0, 0)
	assert.Equal(t, 6.0, engine.PredictNext(series))

	assert.Equal(t, 0.0, engine.PredictNext(seriesFromCounts(0, 0, 0)))
}

func TestPredictNextLinearTrend(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	counts := make([]int, 10)
	for i := range counts {
		counts[i] = i + 1
	}

	// Perfect line y = x + 1 extrapolates to 11 at the next index.
	predicted := engine.PredictNext(seriesFromCounts(counts...))
	assert.InDelta(t, 11.0, predicted, 1e-9)

	_, confidence := engine.Forecast(seriesFromCounts(counts...))
	assert.InDelta(t, 1.0, confidence, 1e-9, "a perfect fit has full confidence")
}

func TestPredictNextNeverNegative(t *testing.T) {
	engine := newTestEngine(&fakeReader{})

	counts := []int{30, 26, 22, 18, 14, 10, 6, 2}
	predicted := engine.PredictNext(seriesFromCounts(counts...))
	assert.GreaterOrEqual(t, predicted, 0.0)
}

func TestDayTruncation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	stamp := time.Date(2026, 3, 1, 2, 30, 0, 0, loc) // 2026-02-28T21:30Z

	assert.Equal(t, day("2026-02-28"), Day(stamp))
}
