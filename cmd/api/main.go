package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"trendpulse/internal/adapter/events"
	"trendpulse/internal/adapter/storage"
	"trendpulse/internal/config"
	"trendpulse/internal/scheduler"
	"trendpulse/internal/server"
	"trendpulse/internal/service/classify"
	"trendpulse/internal/service/ingest"
	"trendpulse/internal/service/pipeline"
	"trendpulse/internal/service/trending"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	db, err := storage.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	articleStore := storage.NewArticleStore(db.Pool)
	trendStore := storage.NewTrendStore(db.Pool)

	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load source catalog")
	}

	if err := articleStore.SyncSources(ctx, sources); err != nil {
		logger.Fatal().Err(err).Msg("failed to sync source catalog")
	}

	// The bus is optional: without it the live websocket is disabled but
	// everything else keeps working.
	bus, err := events.Connect(cfg.NATSURL, &logger)
	if err != nil {
		logger.Warn().Err(err).Msg("event bus unavailable, live updates disabled")
		bus = nil
	} else {
		defer bus.Close()
	}

	fetcher := ingest.NewManager(sources, ingest.ManagerConfig{
		NewsAPIKey:     cfg.NewsAPIKey,
		GuardianAPIKey: cfg.GuardianAPIKey,
		FetchTimeout:   cfg.FetchTimeout,
		FetchRPS:       cfg.FetchRPS,
	}, &logger)

	model := classify.NewNeuralClassifier(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	classifier := classify.New(model, cfg.ConfidenceThreshold, &logger)

	engine := trending.NewEngine(articleStore, trending.DefaultConfig(), &logger)

	jobs := pipeline.New(fetcher, classifier, engine, articleStore, trendStore, bus, pipeline.Config{
		TrendWindowDays:      cfg.TrendWindowDays,
		ArticleRetentionDays: cfg.ArticleRetentionDays,
		TrendRetentionDays:   cfg.TrendRetentionDays,
	}, &logger)

	sched := scheduler.New(jobs, scheduler.Config{
		FetchInterval:    cfg.FetchInterval,
		TrendInterval:    cfg.TrendInterval,
		RetentionHourUTC: cfg.RetentionHourUTC,
	}, &logger)

	sched.Start()

	httpServer := server.New(cfg, server.Dependencies{
		Engine:      engine,
		Predictions: trendStore,
		Countries:   trendStore,
		Live:        trendStore,
		Articles:    articleStore,
		Refresher:   sched,
		DB:          db,
		Bus:         bus,
	}, &logger)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-shutdown
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	sched.Stop()

	logger.Info().Msg("shutdown complete")
}

// newLogger builds the process logger: human-readable in development, JSON
// everywhere else.
func newLogger(appEnv string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if appEnv == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
