package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/service"
)

// AuthHandler handles login, logout, and the current-account endpoint
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and issue a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponseDTO
// @Failure 401 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to log in", zap.Error(err), zap.String("username", req.Username))
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Logout godoc
// @Summary Log out
// @Description Invalidate the current session token
// @Tags Auth
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		h.logger.Error("failed to log out", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current account
// @Description Return the account behind the presented token
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AccountDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	account, err := h.authService.Me(r.Context(), caller)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to load current account", zap.Error(err), zap.Uint("account_id", caller.AccountID))
		respondWithError(w, http.StatusInternalServerError, "Failed to load account")
		return
	}

	respondJSON(w, http.StatusOK, account)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
