package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"trendpulse/internal/domain/article"
)

// Manager fans out to every configured source adapter, rate limited and
// failure isolated: one broken source never aborts the cycle.
type Manager struct {
	adapters []SourceAdapter
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *zerolog.Logger
}

// ManagerConfig holds the upstream credentials and fetch tuning.
type ManagerConfig struct {
	NewsAPIKey     string
	GuardianAPIKey string
	FetchTimeout   time.Duration
	FetchRPS       float64
}

// NewManager builds adapters for every active source in the catalog.
func NewManager(sources []article.Source, cfg ManagerConfig, logger *zerolog.Logger) *Manager {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}

	if cfg.FetchRPS <= 0 {
		cfg.FetchRPS = 2
	}

	var adapters []SourceAdapter

	for _, src := range sources {
		if !src.Active {
			continue
		}

		switch src.Kind {
		case article.KindRSS:
			adapters = append(adapters, NewRSSAdapter(src, cfg.FetchTimeout))
		case article.KindNewsAPI:
			adapters = append(adapters, NewNewsAPIAdapter(src, cfg.NewsAPIKey, cfg.FetchTimeout))
		case article.KindGuardian:
			adapters = append(adapters, NewGuardianAdapter(src, cfg.GuardianAPIKey, cfg.FetchTimeout))
		}
	}

	return &Manager{
		adapters: adapters,
		limiter:  rate.NewLimiter(rate.Limit(cfg.FetchRPS), 1),
		timeout:  cfg.FetchTimeout,
		logger:   logger,
	}
}

// Sources lists the catalog entries the manager fetches from.
func (m *Manager) Sources() []article.Source {
	sources := make([]article.Source, 0, len(m.adapters))
	for _, a := range m.adapters {
		sources = append(sources, a.Source())
	}

	return sources
}

// FetchAll runs one fetch cycle across all sources and returns everything
// that arrived, plus the number of sources that failed.
func (m *Manager) FetchAll(ctx context.Context) ([]RawArticle, int) {
	var (
		articles []RawArticle
		failed   int
	)

	for _, adapter := range m.adapters {
		if err := m.limiter.Wait(ctx); err != nil {
			return articles, failed
		}

		batch, err := m.fetchOne(ctx, adapter)
		if err != nil {
			failed++

			m.logger.Warn().
				Err(err).
				Str("source", adapter.Source().Name).
				Msg("source fetch failed, skipping")

			continue
		}

		m.logger.Debug().
			Str("source", adapter.Source().Name).
			Int("articles", len(batch)).
			Msg("fetched source")

		articles = append(articles, batch...)
	}

	return articles, failed
}

func (m *Manager) fetchOne(ctx context.Context, adapter SourceAdapter) ([]RawArticle, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	return adapter.Fetch(fetchCtx)
}
