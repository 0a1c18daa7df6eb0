package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/service"
)

// AccountHandler handles application account administration
type AccountHandler struct {
	accountService *service.AccountService
	logger         *zap.Logger
}

func NewAccountHandler(accountService *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// ListAccounts godoc
// @Summary List accounts
// @Description All accounts; open to any authenticated caller for owner pickers
// @Tags Accounts
// @Produce json
// @Success 200 {array} domain.AccountDTO
// @Security BearerAuth
// @Router /admin/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	respondJSON(w, http.StatusOK, accounts)
}

// AccountOptions godoc
// @Summary Owner picker options
// @Description id/username pairs for assigning contact owners
// @Tags Accounts
// @Produce json
// @Success 200 {array} domain.OwnerOptionDTO
// @Security BearerAuth
// @Router /accounts/options [get]
func (h *AccountHandler) AccountOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.accountService.Options(r.Context())
	if err != nil {
		h.logger.Error("failed to list account options", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list account options")
		return
	}

	respondJSON(w, http.StatusOK, options)
}

// CreateAccount godoc
// @Summary Create account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body domain.CreateAccountRequest true "Account data"
// @Success 201 {object} domain.AccountDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /admin/accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	account, err := h.accountService.Create(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create account", zap.Error(err), zap.String("username", req.Username))
		respondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	respondJSON(w, http.StatusCreated, account)
}

// ChangeAccountPassword godoc
// @Summary Change account password
// @Tags Accounts
// @Accept json
// @Param id path int true "Account ID"
// @Param request body domain.ChangePasswordRequest true "New password"
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /admin/accounts/{id}/password [put]
func (h *AccountHandler) ChangeAccountPassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.accountService.ChangePassword(r.Context(), id, &req); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to change password", zap.Error(err), zap.Uint("account_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount godoc
// @Summary Delete account
// @Description Remove an account; its contacts stay with no owner
// @Tags Accounts
// @Param id path int true "Account ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /admin/accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	if err := h.accountService.Delete(r.Context(), caller, id); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to delete account", zap.Error(err), zap.Uint("account_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
