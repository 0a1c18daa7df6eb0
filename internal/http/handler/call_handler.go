package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
	"github.com/fardapack/crm-api/internal/service"
)

// CallHandler handles HTTP requests for call logs
type CallHandler struct {
	callService *service.CallService
	logger      *zap.Logger
}

func NewCallHandler(callService *service.CallService, logger *zap.Logger) *CallHandler {
	return &CallHandler{
		callService: callService,
		logger:      logger,
	}
}

// ListCalls godoc
// @Summary List calls
// @Description Ownership-scoped call report with optional filters
// @Tags Calls
// @Produce json
// @Param name query string false "Contact or company name substring"
// @Param statuses query []string false "Status filter" collectionFormat(multi)
// @Param ownerIds query []int false "Owner filter (admins only)" collectionFormat(multi)
// @Param calledFrom query string false "Called on or after (date)"
// @Param calledTo query string false "Called on or before (date)"
// @Param hasOpenFollowUp query bool false "Open follow-up existence"
// @Param lastCallFrom query string false "Contact's last call on or after (date)"
// @Param lastCallTo query string false "Contact's last call on or before (date)"
// @Success 200 {array} domain.CallDTO
// @Security BearerAuth
// @Router /calls [get]
func (h *CallHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	filters := repository.CallFilters{
		Name:            r.URL.Query().Get("name"),
		Called:          queryDateRange(r, "calledFrom", "calledTo"),
		HasOpenFollowUp: queryBool(r, "hasOpenFollowUp"),
		LastCall:        queryDateRange(r, "lastCallFrom", "lastCallTo"),
	}
	for _, s := range queryStrings(r, "statuses") {
		status := domain.CallStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter value")
			return
		}
		filters.Statuses = append(filters.Statuses, status)
	}

	calls, err := h.callService.List(r.Context(), caller, filters, queryUints(r, "ownerIds"))
	if err != nil {
		h.logger.Error("failed to list calls", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list calls")
		return
	}

	respondJSON(w, http.StatusOK, calls)
}

// CreateCall godoc
// @Summary Log a call
// @Description Append a call to a contact's history
// @Tags Calls
// @Accept json
// @Produce json
// @Param request body domain.CreateCallRequest true "Call data"
// @Success 201 {object} domain.CallDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /calls [post]
func (h *CallHandler) CreateCall(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	var req domain.CreateCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	call, err := h.callService.Create(r.Context(), caller, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create call", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create call")
		return
	}

	respondJSON(w, http.StatusCreated, call)
}

// DeleteCall godoc
// @Summary Delete call
// @Tags Calls
// @Param id path int true "Call ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /calls/{id} [delete]
func (h *CallHandler) DeleteCall(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid call ID")
		return
	}

	if err := h.callService.Delete(r.Context(), caller, id); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to delete call", zap.Error(err), zap.Uint("call_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete call")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
