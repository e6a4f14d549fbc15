package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"feedback-backend/internal/feedback"
	"feedback-backend/internal/middleware"
	"feedback-backend/internal/validation"

	"go.uber.org/zap"
)

type FeedbackHandler struct {
	service *feedback.Service
	logger  *zap.Logger
}

func NewFeedbackHandler(service *feedback.Service, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger,
	}
}

// Rating stays raw so a non-integer value is reported against the field
// after the token has been checked.
type SubmitFeedbackRequest struct {
	Rating       json.RawMessage `json:"rating"`
	Comment      string          `json:"comment"`
	SessionToken string          `json:"session_token"`
}

// --- POST /api/feedback ---

func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token := middleware.GetSessionToken(r.Context())
	if token == "" {
		token = req.SessionToken
	}

	rating, ok := parseRating(req.Rating)
	if !ok {
		if _, err := h.service.Authorize(r.Context(), token); err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeError(w, h.logger, validation.Invalid("rating", "rating must be an integer between 1 and 5"))
		return
	}

	record, err := h.service.Submit(r.Context(), token, rating, req.Comment)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "feedback submitted successfully",
		"sentiment": record.Sentiment,
		"feedback":  record,
	})
}

// parseRating accepts JSON integers only. A missing or null rating parses as
// 0 and is rejected by the service's range check.
func parseRating(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, true
	}
	var rating int
	if err := json.Unmarshal(raw, &rating); err != nil {
		return 0, false
	}
	return rating, true
}
