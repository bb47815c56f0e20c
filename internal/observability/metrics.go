// Package observability holds the Prometheus metrics for the service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ArticlesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_articles_fetched_total",
		Help: "The total number of articles fetched from upstream sources",
	}, []string{"source"})

	ArticlesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trendpulse_articles_stored_total",
		Help: "The total number of new articles persisted",
	})

	SourceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trendpulse_source_failures_total",
		Help: "The total number of failed source fetches",
	})

	FetchCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendpulse_fetch_cycle_duration_seconds",
		Help:    "Duration of one full fetch-and-enrich cycle",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	TrendCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendpulse_trend_cycle_duration_seconds",
		Help:    "Duration of one full trend recomputation cycle",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	TrendBucketsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trendpulse_trend_buckets_computed_total",
		Help: "The total number of trend buckets recomputed",
	})

	RetentionDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_retention_deleted_total",
		Help: "The total number of rows removed by the retention sweep",
	}, []string{"table"})

	SchedulerJobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_scheduler_job_runs_total",
		Help: "The total number of scheduler job executions",
	}, []string{"job", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendpulse_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	ClassificationMethodUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_classification_method_total",
		Help: "The total number of classifications per method",
	}, []string{"method"})
)
