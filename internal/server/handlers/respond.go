package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"trendpulse/internal/domain/trend"
)

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response"}`))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithDomainError maps the domain error taxonomy onto HTTP statuses.
// Unknown topics carry their suggestion so clients can self-correct.
func respondWithDomainError(w http.ResponseWriter, err error) {
	var unknownTopic *trend.UnknownTopicError

	switch {
	case errors.As(err, &unknownTopic):
		payload := map[string]string{"error": unknownTopic.Error()}
		if unknownTopic.Suggestion != "" {
			payload["suggestion"] = unknownTopic.Suggestion
		}

		respondWithJSON(w, http.StatusNotFound, payload)
	case errors.Is(err, trend.ErrInvalidRange):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, trend.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not found")
	case errors.Is(err, trend.ErrStorageUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}
