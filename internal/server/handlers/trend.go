package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"trendpulse/internal/domain/trend"
)

// TrendEngine computes trend series and forecasts on demand.
type TrendEngine interface {
	ComputeTrend(ctx context.Context, topic, country string, start, end time.Time) (trend.Series, trend.Metrics, error)
	Forecast(series trend.Series) (value, confidence float64)
}

// PredictionStore reads persisted forecasts.
type PredictionStore interface {
	LatestPredictions(ctx context.Context, topic string) ([]trend.Prediction, error)
}

// TrendHandler serves the topic and trend endpoints.
type TrendHandler struct {
	engine      TrendEngine
	predictions PredictionStore
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(engine TrendEngine, predictions PredictionStore) *TrendHandler {
	return &TrendHandler{
		engine:      engine,
		predictions: predictions,
	}
}

// GetTopics returns the fixed topic catalog.
func (h *TrendHandler) GetTopics(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"topics": trend.Topics,
		"count":  len(trend.Topics),
	})
}

type trendResponse struct {
	Topic     string         `json:"topic"`
	Country   string         `json:"country"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Buckets   []trend.Bucket `json:"buckets"`
	trend.Metrics
}

// GetTrend returns the per-day series and verdict for one topic.
func (h *TrendHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	topic := topicParam(r)
	if topic == "" {
		respondWithError(w, http.StatusBadRequest, "missing topic")

		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}

	country := r.URL.Query().Get("country")

	series, metrics, err := h.engine.ComputeTrend(r.Context(), topic, country, start, end)
	if err != nil {
		respondWithDomainError(w, err)

		return
	}

	respondWithJSON(w, http.StatusOK, trendResponse{
		Topic:     series.Topic,
		Country:   series.Country,
		StartDate: start.Format(time.DateOnly),
		EndDate:   end.Format(time.DateOnly),
		Buckets:   series.Buckets,
		Metrics:   metrics,
	})
}

type analysisResponse struct {
	trendResponse

	Forecast struct {
		PredictedNextCount float64 `json:"predicted_next_count"`
		Confidence         float64 `json:"confidence"`
		ModelVersion       string  `json:"model_version"`
	} `json:"forecast"`

	Sentiment struct {
		Average  float64 `json:"average"`
		Variance float64 `json:"variance"`
	} `json:"sentiment"`
}

// GetTrendAnalysis returns the series plus forecast confidence and a
// window-level sentiment summary.
func (h *TrendHandler) GetTrendAnalysis(w http.ResponseWriter, r *http.Request) {
	topic := topicParam(r)
	if topic == "" {
		respondWithError(w, http.StatusBadRequest, "missing topic")

		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}

	country := r.URL.Query().Get("country")

	series, metrics, err := h.engine.ComputeTrend(r.Context(), topic, country, start, end)
	if err != nil {
		respondWithDomainError(w, err)

		return
	}

	value, confidence := h.engine.Forecast(series)

	resp := analysisResponse{
		trendResponse: trendResponse{
			Topic:     series.Topic,
			Country:   series.Country,
			StartDate: start.Format(time.DateOnly),
			EndDate:   end.Format(time.DateOnly),
			Buckets:   series.Buckets,
			Metrics:   metrics,
		},
	}

	resp.Forecast.PredictedNextCount = value
	resp.Forecast.Confidence = confidence
	resp.Forecast.ModelVersion = "linear_regression_v1"

	resp.Sentiment.Average, resp.Sentiment.Variance = windowSentiment(series.Buckets)

	respondWithJSON(w, http.StatusOK, resp)
}

// GetPredictions returns the latest persisted forecast per topic and
// country, optionally filtered by topic.
func (h *TrendHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic != "" {
		resolved, err := trend.ResolveTopic(topic)
		if err != nil {
			respondWithDomainError(w, err)

			return
		}

		topic = resolved
	}

	predictions, err := h.predictions.LatestPredictions(r.Context(), topic)
	if err != nil {
		respondWithDomainError(w, err)

		return
	}

	if predictions == nil {
		predictions = []trend.Prediction{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

// windowSentiment averages bucket sentiment weighted by article count.
func windowSentiment(buckets []trend.Bucket) (avg, variance float64) {
	var sum, sqSum float64
	var count int

	for _, b := range buckets {
		if b.ArticleCount == 0 {
			continue
		}

		n := float64(b.ArticleCount)
		sum += b.AvgSentiment * n
		sqSum += (b.SentimentVariance + b.AvgSentiment*b.AvgSentiment) * n
		count += b.ArticleCount
	}

	if count == 0 {
		return 0, 0
	}

	avg = sum / float64(count)

	variance = sqSum/float64(count) - avg*avg
	if variance < 0 {
		variance = 0
	}

	return avg, variance
}

// topicParam reads the topic path segment, tolerating both escaped and
// already-decoded forms.
func topicParam(r *http.Request) string {
	raw := chi.URLParam(r, "topic")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}

	return raw
}
