package trending

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"trendpulse/internal/domain/trend"
)

// Config tunes the trend verdict computation.
type Config struct {
	// RecentWindowDays is the size of the recent window compared against
	// the preceding baseline when labelling a direction.
	RecentWindowDays int

	// DirectionThreshold is the relative change in average count that
	// separates rising/falling from stable.
	DirectionThreshold float64

	// SaturationCount is the weighted daily count at which the trend
	// score reaches 0.5. Higher values make the score harder to saturate.
	SaturationCount float64

	// MinPredictionBuckets is the number of populated buckets required
	// before the forecast switches from naive persistence to regression.
	MinPredictionBuckets int
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		RecentWindowDays:     7,
		DirectionThreshold:   0.10,
		SaturationCount:      10,
		MinPredictionBuckets: 7,
	}
}

// Engine derives per-day series and trend verdicts from persisted article
// aggregates. It is read-only and deterministic: the same article set always
// produces the same output.
type Engine struct {
	reader trend.StatsReader
	cfg    Config
	logger *zerolog.Logger
}

var _ trend.Engine = (*Engine)(nil)

// NewEngine creates a trend engine over the given stats reader.
func NewEngine(reader trend.StatsReader, cfg Config, logger *zerolog.Logger) *Engine {
	if cfg.RecentWindowDays <= 0 {
		cfg.RecentWindowDays = DefaultConfig().RecentWindowDays
	}

	if cfg.DirectionThreshold <= 0 {
		cfg.DirectionThreshold = DefaultConfig().DirectionThreshold
	}

	if cfg.SaturationCount <= 0 {
		cfg.SaturationCount = DefaultConfig().SaturationCount
	}

	if cfg.MinPredictionBuckets <= 0 {
		cfg.MinPredictionBuckets = DefaultConfig().MinPredictionBuckets
	}

	return &Engine{reader: reader, cfg: cfg, logger: logger}
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeTrend produces one bucket per calendar day in [start, end] for the
// topic, optionally filtered by country (empty means global), plus the
// derived metrics for the whole window.
func (e *Engine) ComputeTrend(ctx context.Context, topic, country string, start, end time.Time) (trend.Series, trend.Metrics, error) {
	resolved, err := trend.ResolveTopic(topic)
	if err != nil {
		return trend.Series{}, trend.Metrics{}, err
	}

	startDay := Day(start)
	endDay := Day(end)

	if startDay.After(endDay) {
		return trend.Series{}, trend.Metrics{}, fmt.Errorf("%w: %s > %s",
			trend.ErrInvalidRange, startDay.Format(time.DateOnly), endDay.Format(time.DateOnly))
	}

	stats, err := e.reader.DailyStats(ctx, resolved, country, startDay, endDay.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return trend.Series{}, trend.Metrics{}, fmt.Errorf("read daily stats: %w", err)
	}

	byDay := make(map[time.Time]trend.DayStat, len(stats))
	for _, s := range stats {
		byDay[Day(s.Date)] = s
	}

	seriesCountry := country
	if seriesCountry == "" {
		seriesCountry = trend.GlobalCountry
	}

	series := trend.Series{Topic: resolved, Country: seriesCountry}

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		series.Buckets = append(series.Buckets, bucketFor(day, byDay[day]))
	}

	e.logger.Debug().
		Str("topic", resolved).
		Str("country", seriesCountry).
		Int("buckets", len(series.Buckets)).
		Msg("computed trend series")

	return series, e.metrics(series), nil
}

// bucketFor derives a day bucket from its raw aggregate. An empty day is a
// zero-count bucket with neutral sentiment, not an error.
func bucketFor(day time.Time, stat trend.DayStat) trend.Bucket {
	bucket := trend.Bucket{Date: day, ArticleCount: stat.ArticleCount}

	if stat.SentimentScored > 0 {
		n := float64(stat.SentimentScored)
		mean := stat.SentimentSum / n
		variance := stat.SentimentSqSum/n - mean*mean

		// Guard against negative variance from floating point cancellation.
		if variance < 0 || math.IsNaN(variance) {
			variance = 0
		}

		bucket.AvgSentiment = mean
		bucket.SentimentVariance = variance
	}

	return bucket
}

func (e *Engine) metrics(series trend.Series) trend.Metrics {
	m := trend.Metrics{
		Direction:          e.Direction(series),
		Score:              e.Score(series),
		PredictedNextCount: e.PredictNext(series),
	}

	for _, b := range series.Buckets {
		m.TotalArticles += b.ArticleCount

		if b.ArticleCount > m.PeakCount {
			m.PeakCount = b.ArticleCount
			m.PeakDate = b.Date
		}
	}

	return m
}

// Direction compares the recent window's average count against the
// preceding baseline. Fewer than two populated buckets is insufficient data
// and yields DirectionStable.
func (e *Engine) Direction(series trend.Series) trend.Direction {
	buckets := series.Buckets
	if populatedCount(buckets) < 2 {
		return trend.DirectionStable
	}

	n := len(buckets)

	recentLen := e.cfg.RecentWindowDays
	if recentLen > n-1 {
		recentLen = n - 1
	}

	baselineStart := n - 2*recentLen
	if baselineStart < 0 {
		baselineStart = 0
	}

	recentMean := meanCount(buckets[n-recentLen:])
	baselineMean := meanCount(buckets[baselineStart : n-recentLen])

	if baselineMean == 0 {
		if recentMean > 0 {
			return trend.DirectionRising
		}

		return trend.DirectionStable
	}

	change := (recentMean - baselineMean) / baselineMean

	switch {
	case change > e.cfg.DirectionThreshold:
		return trend.DirectionRising
	case change < -e.cfg.DirectionThreshold:
		return trend.DirectionFalling
	default:
		return trend.DirectionStable
	}
}

// Score maps the series onto [0, 1). Counts are combined with linearly
// increasing recency weights, so the same volume scores higher when it is
// concentrated in recent days, then pushed through a saturating normalizer.
// An all-zero series scores exactly 0, and raising any single bucket's count
// never lowers the score.
func (e *Engine) Score(series trend.Series) float64 {
	buckets := series.Buckets
	if len(buckets) == 0 {
		return 0
	}

	var weighted, weightSum float64

	for i, b := range buckets {
		w := float64(i + 1)
		weighted += w * float64(b.ArticleCount)
		weightSum += w
	}

	mean := weighted / weightSum
	if mean <= 0 {
		return 0
	}

	return mean / (mean + e.cfg.SaturationCount)
}

// PredictNext forecasts the next bucket's article count. With fewer than
// MinPredictionBuckets populated buckets it falls back to naive persistence:
// the last observed count, unchanged.
func (e *Engine) PredictNext(series trend.Series) float64 {
	value, _ := e.forecast(series)

	return value
}

// forecast returns the one-bucket-ahead count prediction and a confidence in
// [0, 1] derived from the regression fit.
func (e *Engine) forecast(series trend.Series) (float64, float64) {
	buckets := series.Buckets

	if populatedCount(buckets) < e.cfg.MinPredictionBuckets {
		return lastObservedCount(buckets), 0
	}

	// Least-squares line over (day index, count), extrapolated one day.
	n := float64(len(buckets))

	var sumX, sumY, sumXY, sumXX float64

	for i, b := range buckets {
		x := float64(i)
		y := float64(b.ArticleCount)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return lastObservedCount(buckets), 0
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	predicted := slope*n + intercept
	if predicted < 0 {
		predicted = 0
	}

	return predicted, rSquared(buckets, slope, intercept)
}

// Forecast exposes the prediction plus its confidence for persistence.
func (e *Engine) Forecast(series trend.Series) (float64, float64) {
	return e.forecast(series)
}

func rSquared(buckets []trend.Bucket, slope, intercept float64) float64 {
	var sum float64
	for _, b := range buckets {
		sum += float64(b.ArticleCount)
	}

	mean := sum / float64(len(buckets))

	var ssTot, ssRes float64

	for i, b := range buckets {
		y := float64(b.ArticleCount)
		fit := slope*float64(i) + intercept
		ssTot += (y - mean) * (y - mean)
		ssRes += (y - fit) * (y - fit)
	}

	if ssTot == 0 {
		return 0
	}

	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}

	return r2
}

func populatedCount(buckets []trend.Bucket) int {
	populated := 0

	for _, b := range buckets {
		if b.ArticleCount > 0 {
			populated++
		}
	}

	return populated
}

func lastObservedCount(buckets []trend.Bucket) float64 {
	for i := len(buckets) - 1; i >= 0; i-- {
		if buckets[i].ArticleCount > 0 {
			return float64(buckets[i].ArticleCount)
		}
	}

	return 0
}

func meanCount(buckets []trend.Bucket) float64 {
	if len(buckets) == 0 {
		return 0
	}

	var sum float64
	for _, b := range buckets {
		sum += float64(b.ArticleCount)
	}

	return sum / float64(len(buckets))
}
