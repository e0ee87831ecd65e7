package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/apperrors"
	"github.com/lelangtech/pricewatch-engine/pkg/auth"
	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/services"
)

// AuthHandler handles login requests.
type AuthHandler struct {
	authService services.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/me", authMiddleware.RequireAuth(h.Me))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, expiresAt, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			_ = ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := OKResponse(w, loginResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		_ = ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Valid token for an account that no longer exists.
			_ = ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.logger.Error("Failed to load current user", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	if err := OKResponse(w, user, nil); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
