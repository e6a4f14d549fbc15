package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"feedback-backend/internal/analytics"
	"feedback-backend/internal/middleware"
	"feedback-backend/internal/models"
	"feedback-backend/internal/validation"

	"go.uber.org/zap"
)

type AdminHandler struct {
	service *analytics.Service
	logger  *zap.Logger
}

func NewAdminHandler(service *analytics.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// --- GET /api/admin/stats ---

func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), middleware.GetSessionToken(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// --- GET /api/feedback?sentiment=&rating=&search= ---

func (h *AdminHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	records, err := h.service.ListFeedback(r.Context(), middleware.GetSessionToken(r.Context()), criteria)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"feedback": records,
	})
}

// parseCriteria leaves range checks to the service.
func parseCriteria(r *http.Request) (models.FilterCriteria, error) {
	q := r.URL.Query()
	var criteria models.FilterCriteria

	if s := strings.TrimSpace(q.Get("sentiment")); s != "" {
		label := models.Sentiment(strings.ToLower(s))
		criteria.Sentiment = &label
	}
	if s := strings.TrimSpace(q.Get("rating")); s != "" {
		rating, err := strconv.Atoi(s)
		if err != nil {
			return criteria, validation.Invalid("rating", "rating must be an integer")
		}
		criteria.Rating = &rating
	}
	criteria.Search = strings.TrimSpace(q.Get("search"))
	return criteria, nil
}
