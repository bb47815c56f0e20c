package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trendpulse/internal/domain/trend"
)

// CountryStore reads persisted per-country trend aggregates.
type CountryStore interface {
	CountryTopics(ctx context.Context, country string, since time.Time) ([]trend.CountryTopicStat, error)
	CountryAggregates(ctx context.Context, since time.Time) ([]trend.CountryAggregate, error)
}

// CountryHandler serves the per-country endpoints.
type CountryHandler struct {
	store CountryStore
}

// NewCountryHandler creates a new country handler.
func NewCountryHandler(store CountryStore) *CountryHandler {
	return &CountryHandler{store: store}
}

// GetCountryTopics lists topics active in one country over the window.
func (h *CountryHandler) GetCountryTopics(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	if decoded, err := url.PathUnescape(country); err == nil {
		country = decoded
	}

	if country == "" {
		respondWithError(w, http.StatusBadRequest, "missing country")

		return
	}

	since, err := sinceParam(r, 7)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}

	topics, err := h.store.CountryTopics(r.Context(), country, since)
	if err != nil {
		respondWithDomainError(w, err)

		return
	}

	if topics == nil {
		topics = []trend.CountryTopicStat{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"country": country,
		"topics":  topics,
		"count":   len(topics),
	})
}

// GetCountriesTrends returns the per-country map-view aggregates. A storage
// outage degrades to an empty map rather than an error, so the UI stays up.
func (h *CountryHandler) GetCountriesTrends(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r, 7)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}

	aggregates, err := h.store.CountryAggregates(r.Context(), since)
	if err != nil {
		if errors.Is(err, trend.ErrStorageUnavailable) {
			respondWithJSON(w, http.StatusOK, map[string]interface{}{
				"countries": []trend.CountryAggregate{},
				"count":     0,
				"degraded":  true,
			})

			return
		}

		respondWithDomainError(w, err)

		return
	}

	if aggregates == nil {
		aggregates = []trend.CountryAggregate{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"countries": aggregates,
		"count":     len(aggregates),
	})
}

// sinceParam converts an optional days query parameter into an absolute
// cutoff.
func sinceParam(r *http.Request, defaultDays int) (time.Time, error) {
	days := defaultDays

	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 365 {
			return time.Time{}, errInvalidDays(v)
		}

		days = parsed
	}

	return time.Now().UTC().AddDate(0, 0, -days), nil
}

type invalidDaysError string

func (e invalidDaysError) Error() string {
	return "invalid days parameter " + strconv.Quote(string(e))
}

func errInvalidDays(v string) error {
	return invalidDaysError(v)
}
