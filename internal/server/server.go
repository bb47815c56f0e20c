package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trendpulse/internal/adapter/events"
	"trendpulse/internal/config"
	"trendpulse/internal/observability"
	"trendpulse/internal/server/handlers"
)

// Dependencies collects everything the HTTP surface serves from.
type Dependencies struct {
	Engine      handlers.TrendEngine
	Predictions handlers.PredictionStore
	Countries   handlers.CountryStore
	Live        handlers.LiveStore
	Articles    handlers.ArticleReader
	Refresher   handlers.Refresher
	DB          handlers.Pinger
	Bus         *events.Bus
}

// Server wraps the HTTP server and its router.
type Server struct {
	server *http.Server
	router *chi.Mux
	logger *zerolog.Logger
}

// New builds the router and wires every endpoint.
func New(cfg *config.Config, deps Dependencies, logger *zerolog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(metricsMiddleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	trendHandler := handlers.NewTrendHandler(deps.Engine, deps.Predictions)
	countryHandler := handlers.NewCountryHandler(deps.Countries)
	liveHandler := handlers.NewLiveHandler(deps.Live)
	articleHandler := handlers.NewArticleHandler(deps.Articles)
	adminHandler := handlers.NewAdminHandler(deps.Refresher, deps.DB)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", adminHandler.Health)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/topics", trendHandler.GetTopics)

			r.Route("/trends", func(r chi.Router) {
				r.Get("/{topic}", trendHandler.GetTrend)
				r.Get("/{topic}/analysis", trendHandler.GetTrendAnalysis)
			})

			r.Route("/countries", func(r chi.Router) {
				r.Get("/trends", countryHandler.GetCountriesTrends)
				r.Get("/{country}/topics", countryHandler.GetCountryTopics)
			})

			r.Get("/live", liveHandler.GetLive)
			r.Get("/predictions", trendHandler.GetPredictions)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/search", articleHandler.Search)
				r.Get("/recent", articleHandler.Recent)
			})

			r.Get("/statistics", articleHandler.Statistics)
			r.Post("/refresh", adminHandler.Refresh)
		})
	})

	if deps.Bus != nil {
		router.Get("/ws/live", handlers.LiveWebSocketHandler(deps.Bus, logger))
	}

	router.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
		logger: logger,
	}
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// metricsMiddleware records request durations per route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		observability.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(started).Seconds())
	})
}
