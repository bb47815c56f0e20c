package trend

import (
	"context"
	"time"
)

// Engine computes per-day time series and trend verdicts from the persisted
// article set. All operations are read-only; re-running them over an
// unchanged article set yields identical output.
type Engine interface {
	// ComputeTrend produces one bucket per calendar day in [start, end]
	// for the given topic, optionally filtered by country (empty means
	// global). Fails with ErrInvalidRange when start is after end and
	// with UnknownTopicError when the topic does not resolve.
	ComputeTrend(ctx context.Context, topic, country string, start, end time.Time) (Series, Metrics, error)

	// Direction labels the series by comparing a recent window's average
	// count against a preceding baseline. Fewer than two populated
	// buckets yields DirectionStable.
	Direction(series Series) Direction

	// Score maps the series onto [0, 1]. An all-zero series scores 0;
	// raising any bucket's count never lowers the score.
	Score(series Series) float64

	// PredictNext forecasts the next bucket's article count. With fewer
	// than seven populated buckets it returns the last observed count.
	PredictNext(series Series) float64
}

// DayStat is the per-day aggregate the engine reads from storage: the
// article count plus sentiment sums sufficient to derive mean and variance.
type DayStat struct {
	Date            time.Time
	ArticleCount    int
	SentimentSum    float64
	SentimentSqSum  float64
	SentimentScored int
}

// StatsReader supplies raw per-day aggregates for a topic/country window.
type StatsReader interface {
	DailyStats(ctx context.Context, topic, country string, start, end time.Time) ([]DayStat, error)
}
