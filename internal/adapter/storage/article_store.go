package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"trendpulse/internal/domain/article"
	"trendpulse/internal/domain/trend"
)

// ArticleStore persists articles and serves the per-day aggregates the trend
// engine reads.
type ArticleStore struct {
	db      *pgxpool.Pool
	builder sq.StatementBuilderType
}

// NewArticleStore creates a new article store.
func NewArticleStore(db *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var _ trend.StatsReader = (*ArticleStore)(nil)

const articleColumns = `
	id, url, title, content, summary, source,
	published_at, scraped_at,
	country, locations, geo_confidence,
	topic, topic_confidence, classification_method,
	sentiment_score, sentiment_confidence,
	keywords, language, word_count`

// Save inserts a batch of articles, skipping any URL already persisted.
// It returns the number of rows actually inserted.
func (s *ArticleStore) Save(ctx context.Context, articles []article.Article) (int, error) {
	query := `
		INSERT INTO articles (
			id, url, title, content, summary, source,
			published_at, scraped_at,
			country, locations, geo_confidence,
			topic, topic_confidence, classification_method,
			sentiment_score, sentiment_confidence,
			keywords, language, word_count
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8,
			$9, $10, $11,
			$12, $13, $14,
			$15, $16,
			$17, $18, $19
		)
		ON CONFLICT (url) DO NOTHING
	`

	inserted := 0

	for _, a := range articles {
		var sentiment *float64
		if a.SentimentConfidence > 0 {
			score := a.SentimentScore
			sentiment = &score
		}

		tag, err := s.db.Exec(ctx, query,
			a.ID, a.URL, a.Title, a.Content, a.Summary, a.SourceName,
			a.PublishedAt, a.ScrapedAt,
			a.Country, a.Locations, a.GeoConfidence,
			a.Topic, a.TopicConfidence, string(a.ClassificationMethod),
			sentiment, a.SentimentConfidence,
			a.Keywords, a.Language, a.WordCount,
		)
		if err != nil {
			return inserted, fmt.Errorf("error saving article %s: %w", a.URL, wrapStorageErr(err))
		}

		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// DailyStats returns one row per calendar day that has at least one matching
// article. An empty country means global.
func (s *ArticleStore) DailyStats(ctx context.Context, topic, country string, start, end time.Time) ([]trend.DayStat, error) {
	builder := s.builder.
		Select(
			"date_trunc('day', published_at) AS bucket",
			"COUNT(*)",
			"COALESCE(SUM(sentiment_score), 0)",
			"COALESCE(SUM(sentiment_score * sentiment_score), 0)",
			"COUNT(sentiment_score)",
		).
		From("articles").
		Where(sq.Eq{"topic": topic}).
		Where(sq.GtOrEq{"published_at": start}).
		Where(sq.LtOrEq{"published_at": end}).
		GroupBy("bucket").
		OrderBy("bucket")

	if country != "" && country != trend.GlobalCountry {
		builder = builder.Where(sq.Eq{"country": country})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building daily stats query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying daily stats: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var stats []trend.DayStat

	for rows.Next() {
		var stat trend.DayStat
		if err := rows.Scan(&stat.Date, &stat.ArticleCount, &stat.SentimentSum, &stat.SentimentSqSum, &stat.SentimentScored); err != nil {
			return nil, fmt.Errorf("error scanning daily stats: %w", err)
		}

		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// Search filters articles by text, topics, countries and a date range.
func (s *ArticleStore) Search(ctx context.Context, q article.SearchQuery) ([]article.Article, error) {
	builder := s.builder.
		Select(articleColumns).
		From("articles").
		OrderBy("published_at DESC")

	if q.Query != "" {
		pattern := "%" + q.Query + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"summary": pattern},
			sq.ILike{"content": pattern},
		})
	}

	if len(q.Topics) > 0 {
		builder = builder.Where(sq.Eq{"topic": q.Topics})
	}

	if len(q.Countries) > 0 {
		builder = builder.Where(sq.Eq{"country": q.Countries})
	}

	if q.Start != nil {
		builder = builder.Where(sq.GtOrEq{"published_at": *q.Start})
	}

	if q.End != nil {
		builder = builder.Where(sq.LtOrEq{"published_at": *q.End})
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	builder = builder.Limit(uint64(limit))

	if q.Offset > 0 {
		builder = builder.Offset(uint64(q.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building search query: %w", err)
	}

	return s.queryArticles(ctx, query, args...)
}

// Recent returns the newest articles by publication time, optionally filtered
// by topic.
func (s *ArticleStore) Recent(ctx context.Context, topic string, limit int) ([]article.Article, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	builder := s.builder.
		Select(articleColumns).
		From("articles").
		OrderBy("published_at DESC").
		Limit(uint64(limit))

	if topic != "" {
		builder = builder.Where(sq.Eq{"topic": topic})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building recent query: %w", err)
	}

	return s.queryArticles(ctx, query, args...)
}

// ActiveCountries lists the countries articles were geotagged with since
// the given time.
func (s *ArticleStore) ActiveCountries(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT country
		FROM articles
		WHERE country <> '' AND published_at >= $1
		ORDER BY country
	`, since)
	if err != nil {
		return nil, fmt.Errorf("error querying active countries: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var countries []string

	for rows.Next() {
		var country string
		if err := rows.Scan(&country); err != nil {
			return nil, fmt.Errorf("error scanning country: %w", err)
		}

		countries = append(countries, country)
	}

	return countries, rows.Err()
}

// Statistics summarizes the whole stored corpus.
func (s *ArticleStore) Statistics(ctx context.Context) (article.Statistics, error) {
	stats := article.Statistics{
		ArticlesByTopic:  map[string]int64{},
		ArticlesBySource: map[string]int64{},
		TopCountries:     map[string]int64{},
	}

	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*), MIN(published_at), MAX(published_at) FROM articles
	`)
	if err := row.Scan(&stats.TotalArticles, &stats.OldestArticle, &stats.NewestArticle); err != nil {
		return stats, fmt.Errorf("error counting articles: %w", wrapStorageErr(err))
	}

	if err := s.countBy(ctx, "topic", "topic <> ''", stats.ArticlesByTopic); err != nil {
		return stats, err
	}

	if err := s.countBy(ctx, "source", "", stats.ArticlesBySource); err != nil {
		return stats, err
	}

	if err := s.countBy(ctx, "country", "country <> ''", stats.TopCountries); err != nil {
		return stats, err
	}

	row = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM topic_trends`)
	if err := row.Scan(&stats.TrendRecords); err != nil {
		return stats, fmt.Errorf("error counting trend records: %w", wrapStorageErr(err))
	}

	return stats, nil
}

func (s *ArticleStore) countBy(ctx context.Context, column, filter string, out map[string]int64) error {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM articles GROUP BY %s ORDER BY COUNT(*) DESC LIMIT 50`, column, column)
	if filter != "" {
		query = fmt.Sprintf(`SELECT %s, COUNT(*) FROM articles WHERE %s GROUP BY %s ORDER BY COUNT(*) DESC LIMIT 50`, column, filter, column)
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("error counting by %s: %w", column, wrapStorageErr(err))
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64

		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("error scanning %s counts: %w", column, err)
		}

		out[key] = count
	}

	return rows.Err()
}

// DeleteOlderThan removes articles published before the cutoff and returns
// the number of deleted rows.
func (s *ArticleStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM articles WHERE published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting old articles: %w", wrapStorageErr(err))
	}

	return tag.RowsAffected(), nil
}

// SyncSources upserts the configured source catalog.
func (s *ArticleStore) SyncSources(ctx context.Context, sources []article.Source) error {
	query := `
		INSERT INTO sources (name, url, kind, credibility, country, language, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (name) DO UPDATE
		SET
			url = $2,
			kind = $3,
			credibility = $4,
			country = $5,
			language = $6,
			active = $7,
			updated_at = now()
	`

	for _, src := range sources {
		if _, err := s.db.Exec(ctx, query,
			src.Name, src.URL, string(src.Kind), src.Credibility, src.Country, src.Language, src.Active,
		); err != nil {
			return fmt.Errorf("error syncing source %s: %w", src.Name, wrapStorageErr(err))
		}
	}

	return nil
}

func (s *ArticleStore) queryArticles(ctx context.Context, query string, args ...any) ([]article.Article, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying articles: %w", wrapStorageErr(err))
	}
	defer rows.Close()

	var articles []article.Article

	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}

		articles = append(articles, a)
	}

	return articles, rows.Err()
}

func scanArticle(row pgx.Row) (article.Article, error) {
	var a article.Article
	var method string
	var sentiment *float64

	err := row.Scan(
		&a.ID, &a.URL, &a.Title, &a.Content, &a.Summary, &a.SourceName,
		&a.PublishedAt, &a.ScrapedAt,
		&a.Country, &a.Locations, &a.GeoConfidence,
		&a.Topic, &a.TopicConfidence, &method,
		&sentiment, &a.SentimentConfidence,
		&a.Keywords, &a.Language, &a.WordCount,
	)
	if err != nil {
		return a, fmt.Errorf("error scanning article: %w", err)
	}

	a.ClassificationMethod = article.ClassificationMethod(method)
	if sentiment != nil {
		a.SentimentScore = *sentiment
	}

	return a, nil
}

// wrapStorageErr maps connection-level failures onto the storage sentinel so
// callers can degrade instead of surfacing driver internals.
func wrapStorageErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %v", trend.ErrStorageUnavailable, err)
}
