package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trendpulse/internal/domain/trend"
)

// LiveStore reads the last-day live trend aggregates.
type LiveStore interface {
	Live(ctx context.Context, since time.Time, limit int) ([]trend.LiveTopic, error)
}

// LiveHandler serves the live trending feed.
type LiveHandler struct {
	store LiveStore
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(store LiveStore) *LiveHandler {
	return &LiveHandler{store: store}
}

// GetLive returns the topics trending over the last 24 hours. A storage
// outage degrades to an empty feed.
func (h *LiveHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	limit := 10

	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 50 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")

			return
		}

		limit = parsed
	}

	since := time.Now().UTC().AddDate(0, 0, -1)

	topics, err := h.store.Live(r.Context(), since, limit)
	if err != nil {
		if errors.Is(err, trend.ErrStorageUnavailable) {
			respondWithJSON(w, http.StatusOK, map[string]interface{}{
				"topics":   []trend.LiveTopic{},
				"count":    0,
				"degraded": true,
			})

			return
		}

		respondWithDomainError(w, err)

		return
	}

	if topics == nil {
		topics = []trend.LiveTopic{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"topics": topics,
		"count":  len(topics),
	})
}
