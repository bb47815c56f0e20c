package handlers

import (
	"context"
	"net/http"
	"strconv"

	"trendpulse/internal/domain/article"
	"trendpulse/internal/domain/trend"
)

// ArticleReader is the article persistence the handlers read from.
type ArticleReader interface {
	Search(ctx context.Context, q article.SearchQuery) ([]article.Article, error)
	Recent(ctx context.Context, topic string, limit int) ([]article.Article, error)
	Statistics(ctx context.Context) (article.Statistics, error)
}

// ArticleHandler serves the article endpoints.
type ArticleHandler struct {
	store ArticleReader
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(store ArticleReader) *ArticleHandler {
	return &ArticleHandler{store: store}
}

type articleView struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Source      string   `json:"source"`
	PublishedAt string   `json:"published_at"`
	Country     string   `json:"country,omitempty"`
	Topic       string   `json:"topic"`
	Sentiment   float64  `json:"sentiment_score"`
	Keywords    []string `json:"keywords,omitempty"`
}

func toView(a article.Article) articleView {
	return articleView{
		ID:          a.ID,
		URL:         a.URL,
		Title:       a.Title,
		Summary:     a.Summary,
		Source:      a.SourceName,
		PublishedAt: a.PublishedAt.Format("2006-01-02T15:04:05Z07:00"),
		Country:     a.Country,
		Topic:       a.Topic,
		Sentiment:   a.SentimentScore,
		Keywords:    a.Keywords,
	}
}

// Search filters articles by free text, topic, country and date range.
func (h *ArticleHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := article.SearchQuery{
		Query: r.URL.Query().Get("q"),
	}

	if topic := r.URL.Query().Get("topic"); topic != "" {
		resolved, err := trend.ResolveTopic(topic)
		if err != nil {
			respondWithDomainError(w, err)

			return
		}

		query.Topics = []string{resolved}
	}

	if country := r.URL.Query().Get("country"); country != "" {
		query.Countries = []string{country}
	}

	start, err := parseDateParam(r.URL.Query().Get("start_date"), false)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}

	if !start.IsZero() {
		query.Start = &start
	}

	end, err := parseDateParam(r.URL.Query().Get("end_date"), true)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}

	if !end.IsZero() {
		if !start.IsZero() && start.After(end) {
			respondWithError(w, http.StatusBadRequest, trend.ErrInvalidRange.Error())

			return
		}

		query.End = &end
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 100 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")

			return
		}

		query.Limit = parsed
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid offset parameter")

			return
		}

		query.Offset = parsed
	}

	articles, err := h.store.Search(r.Context(), query)
	if err != nil {
		respondWithDomainError(w, err)

		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"articles": toViews(articles),
		"count":    len(articles),
	})
}

// Recent returns the newest articles, optionally for one topic.
func (h *ArticleHandler) Recent(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic != "" {
		resolved, err := trend.ResolveTopic(topic)
		if err != nil {
			respondWithDomainError(w, err)

			return
		}

		topic = resolved
	}

	limit := 20

	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 100 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")

			return
		}

		limit = parsed
	}

	articles, err := h.store.Recent(r.Context(), topic, limit)
	if err != nil {
		respondWithDomainError(w, err)

		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"articles": toViews(articles),
		"count":    len(articles),
	})
}

// Statistics summarizes the stored corpus.
func (h *ArticleHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Statistics(r.Context())
	if err != nil {
		respondWithDomainError(w, err)

		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func toViews(articles []article.Article) []articleView {
	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, toView(a))
	}

	return views
}
