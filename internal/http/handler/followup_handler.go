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

// FollowUpHandler handles HTTP requests for follow-ups
type FollowUpHandler struct {
	followUpService *service.FollowUpService
	logger          *zap.Logger
}

func NewFollowUpHandler(followUpService *service.FollowUpService, logger *zap.Logger) *FollowUpHandler {
	return &FollowUpHandler{
		followUpService: followUpService,
		logger:          logger,
	}
}

// ListFollowUps godoc
// @Summary List follow-ups
// @Description Ownership-scoped follow-up report with optional filters
// @Tags FollowUps
// @Produce json
// @Param name query string false "Contact or company name substring"
// @Param statuses query []string false "Status filter" collectionFormat(multi)
// @Param ownerIds query []int false "Owner filter (admins only)" collectionFormat(multi)
// @Param dueFrom query string false "Due on or after (date)"
// @Param dueTo query string false "Due on or before (date)"
// @Param lastCallFrom query string false "Contact's last call on or after (date)"
// @Param lastCallTo query string false "Contact's last call on or before (date)"
// @Success 200 {array} domain.FollowUpDTO
// @Security BearerAuth
// @Router /followups [get]
func (h *FollowUpHandler) ListFollowUps(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	filters := repository.FollowUpFilters{
		Name:     r.URL.Query().Get("name"),
		Due:      queryDateRange(r, "dueFrom", "dueTo"),
		LastCall: queryDateRange(r, "lastCallFrom", "lastCallTo"),
	}
	for _, s := range queryStrings(r, "statuses") {
		status := domain.FollowUpStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter value")
			return
		}
		filters.Statuses = append(filters.Statuses, status)
	}

	followUps, err := h.followUpService.List(r.Context(), caller, filters, queryUints(r, "ownerIds"))
	if err != nil {
		h.logger.Error("failed to list follow-ups", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list follow-ups")
		return
	}

	respondJSON(w, http.StatusOK, followUps)
}

// CreateFollowUp godoc
// @Summary Create follow-up
// @Description Append a follow-up to a contact
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param request body domain.CreateFollowUpRequest true "Follow-up data"
// @Success 201 {object} domain.FollowUpDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /followups [post]
func (h *FollowUpHandler) CreateFollowUp(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	var req domain.CreateFollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	followUp, err := h.followUpService.Create(r.Context(), caller, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create follow-up", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create follow-up")
		return
	}

	respondJSON(w, http.StatusCreated, followUp)
}

// UpdateFollowUp godoc
// @Summary Update follow-up
// @Description Partial update of title, details, or due time
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param id path int true "Follow-up ID"
// @Param request body domain.UpdateFollowUpRequest true "Fields to change"
// @Success 200 {object} domain.FollowUpDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /followups/{id} [put]
func (h *FollowUpHandler) UpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid follow-up ID")
		return
	}

	var req domain.UpdateFollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	followUp, err := h.followUpService.Update(r.Context(), caller, id, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update follow-up", zap.Error(err), zap.Uint("followup_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to update follow-up")
		return
	}

	respondJSON(w, http.StatusOK, followUp)
}

// UpdateFollowUpStatus godoc
// @Summary Update follow-up status
// @Description Transition between in_progress and done
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param id path int true "Follow-up ID"
// @Param request body domain.UpdateFollowUpStatusRequest true "New status"
// @Success 200 {object} domain.FollowUpDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /followups/{id}/status [put]
func (h *FollowUpHandler) UpdateFollowUpStatus(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid follow-up ID")
		return
	}

	var req domain.UpdateFollowUpStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	followUp, err := h.followUpService.UpdateStatus(r.Context(), caller, id, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update follow-up status", zap.Error(err), zap.Uint("followup_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to update follow-up status")
		return
	}

	respondJSON(w, http.StatusOK, followUp)
}

// DeleteFollowUp godoc
// @Summary Delete follow-up
// @Tags FollowUps
// @Param id path int true "Follow-up ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /followups/{id} [delete]
func (h *FollowUpHandler) DeleteFollowUp(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid follow-up ID")
		return
	}

	if err := h.followUpService.Delete(r.Context(), caller, id); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to delete follow-up", zap.Error(err), zap.Uint("followup_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete follow-up")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
