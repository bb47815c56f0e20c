// Package events publishes pipeline events over NATS for live consumers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"trendpulse/internal/domain/trend"
)

const (
	// SubjectTrendUpdates carries recomputed live trend snapshots.
	SubjectTrendUpdates = "trends.updates"

	// SubjectArticlesIngested carries per-cycle ingestion summaries.
	SubjectArticlesIngested = "articles.ingested"
)

// TrendUpdate is the payload published after each trend recomputation.
type TrendUpdate struct {
	Topics     []trend.LiveTopic `json:"topics"`
	ComputedAt time.Time         `json:"computed_at"`
}

// IngestSummary is the payload published after each fetch cycle.
type IngestSummary struct {
	Fetched   int       `json:"fetched"`
	Stored    int       `json:"stored"`
	Failed    int       `json:"failed_sources"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Bus is a thin NATS publisher. A nil Bus is valid and drops everything,
// so the pipeline runs without a broker in development.
type Bus struct {
	conn   *nats.Conn
	logger *zerolog.Logger
}

// Connect dials NATS and returns a bus.
func Connect(url string, logger *zerolog.Logger) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Bus{conn: conn, logger: logger}, nil
}

// Close drains the connection.
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}

	_ = b.conn.Drain()
}

// PublishTrendUpdate broadcasts a live trend snapshot.
func (b *Bus) PublishTrendUpdate(update TrendUpdate) {
	b.publish(SubjectTrendUpdates, update)
}

// PublishIngestSummary broadcasts an ingestion cycle summary.
func (b *Bus) PublishIngestSummary(summary IngestSummary) {
	b.publish(SubjectArticlesIngested, summary)
}

// Subscribe registers a handler for raw payloads on a subject.
func (b *Bus) Subscribe(subject string, handler func([]byte)) (*nats.Subscription, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("event bus not connected")
	}

	return b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

func (b *Bus) publish(subject string, payload any) {
	if b == nil || b.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error().Err(err).Str("subject", subject).Msg("failed to marshal event")

		return
	}

	if err := b.conn.Publish(subject, data); err != nil {
		b.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
