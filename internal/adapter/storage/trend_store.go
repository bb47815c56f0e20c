package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"trendpulse/internal/domain/trend"
)

// TrendStore persists derived trend buckets and predictions.
type TrendStore struct {
	db *pgxpool.Pool
}

// NewTrendStore creates a new trend store.
func NewTrendStore(db *pgxpool.Pool) *TrendStore {
	return &TrendStore{db: db}
}

// UpsertBuckets replaces the derived fields of each (topic, country, day)
// bucket with a freshly computed value.
func (s *TrendStore) UpsertBuckets(ctx context.Context, buckets []trend.TopicTrend) error {
	query := `
		INSERT INTO topic_trends (
			topic, country, bucket_date,
			article_count, avg_sentiment, sentiment_variance,
			trend_direction, trend_score, predicted_next_count,
			computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (topic, country, bucket_date) DO UPDATE
		SET
			article_count = $4,
			avg_sentiment = $5,
			sentiment_variance = $6,
			trend_direction = $7,
			trend_score = $8,
			predicted_next_count = $9,
			computed_at = $10
	`

	for _, b := range buckets {
		country := b.Country
		if country == "" {
			country = trend.GlobalCountry
		}

		var predicted float64
		if b.PredictedNext != nil {
			predicted = *b.PredictedNext
		}

		computedAt := b.ComputedAt
		if computedAt.IsZero() {
			computedAt = time.Now().UTC()
		}

		if _, err := s.db.Exec(ctx, query,
			b.Topic, country, b.Date,
			b.ArticleCount, b.AvgSentiment, b.SentimentVariance,
			string(b.TrendDirection), b.TrendScore, predicted,
			computedAt,
		); err != nil {
			return fmt.Errorf("error upserting trend bucket %s/%s/%s: %w",
				b.Topic, country, b.Date.Format("2006-01-02"), wrapStorageErr(err))
		}
	}

	return nil
}

// TrendsInRange returns persisted buckets for a topic ordered by day.
// An empty country means global.
func (s *TrendStore) TrendsInRange(ctx context.Context, topic, country string, start, end time.Time) ([]trend.TopicTrend, error) {
	if country == "" {
		country = trend.GlobalCountry
	}

	rows, err := s.db.Query(ctx, `
		SELECT topic, country, bucket_date,
		       article_count, avg_sentiment, sentiment_variance,
		       trend_direction, trend_score, predicted_next_count,
		       computed_at
		FROM topic_trends
		WHERE topic = $1 AND country = $2 AND bucket_date BETWEEN $3 AND $4
		ORDER BY bucket_date
	`, topic, country, start, end)
	if err != nil {
		return nil, fmt.Errorf("error querying trends: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var trends []trend.TopicTrend

	for rows.Next() {
		var (
			t         trend.TopicTrend
			direction string
			predicted float64
		)

		if err := rows.Scan(
			&t.Topic, &t.Country, &t.Date,
			&t.ArticleCount, &t.AvgSentiment, &t.SentimentVariance,
			&direction, &t.TrendScore, &predicted,
			&t.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning trend bucket: %w", err)
		}

		t.TrendDirection = trend.Direction(direction)
		if predicted > 0 {
			t.PredictedNext = &predicted
		}

		trends = append(trends, t)
	}

	return trends, rows.Err()
}

// Live aggregates per-country buckets from the last day into one entry per
// topic, ordered by article volume.
func (s *TrendStore) Live(ctx context.Context, since time.Time, limit int) ([]trend.LiveTopic, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := s.db.Query(ctx, `
		SELECT topic,
		       SUM(article_count),
		       MAX(trend_score),
		       CASE WHEN SUM(article_count) > 0
		            THEN SUM(avg_sentiment * article_count) / SUM(article_count)
		            ELSE 0 END,
		       COUNT(DISTINCT country)
		FROM topic_trends
		WHERE bucket_date >= $1 AND country <> $2
		GROUP BY topic
		HAVING SUM(article_count) > 0
		ORDER BY SUM(article_count) DESC
		LIMIT $3
	`, since, trend.GlobalCountry, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying live topics: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var topics []trend.LiveTopic

	for rows.Next() {
		var t trend.LiveTopic
		if err := rows.Scan(&t.Topic, &t.ArticleCount, &t.TrendScore, &t.AvgSentiment, &t.CountriesCount); err != nil {
			return nil, fmt.Errorf("error scanning live topic: %w", err)
		}

		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(topics) == 0 {
		return topics, nil
	}

	top, err := s.topCountries(ctx, since)
	if err != nil {
		return nil, err
	}

	for i := range topics {
		topics[i].TopCountry = top[topics[i].Topic]
	}

	return topics, nil
}

func (s *TrendStore) topCountries(ctx context.Context, since time.Time) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (topic) topic, country
		FROM topic_trends
		WHERE bucket_date >= $1 AND country <> $2
		ORDER BY topic, article_count DESC
	`, since, trend.GlobalCountry)
	if err != nil {
		return nil, fmt.Errorf("error querying top countries: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	top := map[string]string{}

	for rows.Next() {
		var topic, country string
		if err := rows.Scan(&topic, &country); err != nil {
			return nil, fmt.Errorf("error scanning top country: %w", err)
		}

		top[topic] = country
	}

	return top, rows.Err()
}

// CountryTopics lists topics active in one country since the given day.
func (s *TrendStore) CountryTopics(ctx context.Context, country string, since time.Time) ([]trend.CountryTopicStat, error) {
	rows, err := s.db.Query(ctx, `
		SELECT topic,
		       SUM(article_count),
		       MAX(trend_score),
		       CASE WHEN SUM(article_count) > 0
		            THEN SUM(avg_sentiment * article_count) / SUM(article_count)
		            ELSE 0 END,
		       (ARRAY_AGG(trend_direction ORDER BY bucket_date DESC))[1]
		FROM topic_trends
		WHERE country = $1 AND bucket_date >= $2
		GROUP BY topic
		HAVING SUM(article_count) > 0
		ORDER BY SUM(article_count) DESC
	`, country, since)
	if err != nil {
		return nil, fmt.Errorf("error querying country topics: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var stats []trend.CountryTopicStat

	for rows.Next() {
		var (
			stat      trend.CountryTopicStat
			direction string
		)

		if err := rows.Scan(&stat.Topic, &stat.ArticleCount, &stat.TrendScore, &stat.AvgSentiment, &direction); err != nil {
			return nil, fmt.Errorf("error scanning country topic: %w", err)
		}

		stat.Direction = trend.Direction(direction)
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// CountryAggregates summarizes trend activity per country for the map view.
func (s *TrendStore) CountryAggregates(ctx context.Context, since time.Time) ([]trend.CountryAggregate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT country,
		       SUM(article_count),
		       MAX(trend_score),
		       CASE WHEN SUM(article_count) > 0
		            THEN SUM(avg_sentiment * article_count) / SUM(article_count)
		            ELSE 0 END,
		       MAX(bucket_date),
		       COUNT(*)
		FROM topic_trends
		WHERE country <> $1 AND bucket_date >= $2
		GROUP BY country
		HAVING SUM(article_count) > 0
		ORDER BY SUM(article_count) DESC
	`, trend.GlobalCountry, since)
	if err != nil {
		return nil, fmt.Errorf("error querying country aggregates: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var aggregates []trend.CountryAggregate

	for rows.Next() {
		var a trend.CountryAggregate
		if err := rows.Scan(&a.Country, &a.ArticleCount, &a.TrendScore, &a.AvgSentiment, &a.LatestDate, &a.DataPoints); err != nil {
			return nil, fmt.Errorf("error scanning country aggregate: %w", err)
		}

		aggregates = append(aggregates, a)
	}

	return aggregates, rows.Err()
}

// SavePredictions stores forecasts, replacing any earlier forecast for the
// same target day and model.
func (s *TrendStore) SavePredictions(ctx context.Context, predictions []trend.Prediction) error {
	query := `
		INSERT INTO topic_predictions (
			id, topic, country, target_date,
			predicted_count, confidence, model_version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (topic, country, target_date, model_version) DO UPDATE
		SET
			predicted_count = $5,
			confidence = $6,
			created_at = $8
	`

	for _, p := range predictions {
		country := p.Country
		if country == "" {
			country = trend.GlobalCountry
		}

		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		if _, err := s.db.Exec(ctx, query,
			uuid.NewString(), p.Topic, country, p.PredictionDate,
			p.PredictedScore, p.Confidence, p.ModelVersion, createdAt,
		); err != nil {
			return fmt.Errorf("error saving prediction %s/%s: %w", p.Topic, country, wrapStorageErr(err))
		}
	}

	return nil
}

// LatestPredictions returns the most recent forecast per (topic, country),
// optionally filtered by topic.
func (s *TrendStore) LatestPredictions(ctx context.Context, topic string) ([]trend.Prediction, error) {
	query := `
		SELECT DISTINCT ON (topic, country)
		       topic, country, target_date,
		       predicted_count, confidence, model_version, created_at
		FROM topic_predictions
		ORDER BY topic, country, created_at DESC
	`
	args := []any{}

	if topic != "" {
		query = `
			SELECT DISTINCT ON (topic, country)
			       topic, country, target_date,
			       predicted_count, confidence, model_version, created_at
			FROM topic_predictions
			WHERE topic = $1
			ORDER BY topic, country, created_at DESC
		`
		args = append(args, topic)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying predictions: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var predictions []trend.Prediction

	for rows.Next() {
		var p trend.Prediction
		if err := rows.Scan(
			&p.Topic, &p.Country, &p.PredictionDate,
			&p.PredictedScore, &p.Confidence, &p.ModelVersion, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning prediction: %w", err)
		}

		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// DeleteOlderThan removes trend buckets and predictions older than the
// cutoff day, returning the number of deleted bucket rows.
func (s *TrendStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM topic_trends WHERE bucket_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting old trend buckets: %w", wrapStorageErr(err))
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM topic_predictions WHERE target_date < $1`, cutoff); err != nil {
		return tag.RowsAffected(), fmt.Errorf("error deleting old predictions: %w", wrapStorageErr(err))
	}

	return tag.RowsAffected(), nil
}
