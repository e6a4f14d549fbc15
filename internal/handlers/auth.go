package handlers

import (
	"net/http"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/middleware"
	"feedback-backend/internal/models"

	"go.uber.org/zap"
)

type AuthHandler struct {
	gateway *auth.Gateway
	logger  *zap.Logger
}

func NewAuthHandler(gateway *auth.Gateway, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// --- Request types ---

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LogoutRequest struct {
	SessionToken string `json:"session_token"`
}

// --- POST /api/auth/register ---

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.Registration
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.gateway.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "account created",
		"user_id": user.ID,
	})
}

// --- POST /api/auth/login ---

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.ScopeUser)
}

// --- POST /api/auth/admin/login ---

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.ScopeAdmin)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, scope models.Scope) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.gateway.Login(r.Context(), req.Username, req.Password, scope)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"message":       "login successful",
		"session_token": token,
	})
}

// --- POST /api/auth/logout ---
// Always succeeds: an unknown or already revoked token is already logged out.

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetSessionToken(r.Context())
	if token == "" {
		var req LogoutRequest
		if err := decodeBody(r, &req); err == nil {
			token = req.SessionToken
		}
	}
	if token != "" {
		h.gateway.Logout(r.Context(), token)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged out",
	})
}
