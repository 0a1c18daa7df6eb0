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

// ContactHandler handles HTTP requests for contacts
type ContactHandler struct {
	contactService *service.ContactService
	logger         *zap.Logger
}

func NewContactHandler(contactService *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// ListContacts godoc
// @Summary List contacts
// @Description Ownership-scoped contact report with optional filters
// @Tags Contacts
// @Produce json
// @Param name query string false "Full name substring"
// @Param firstName query string false "First name substring"
// @Param lastName query string false "Last name substring"
// @Param phone query string false "Phone substring"
// @Param role query string false "Role substring"
// @Param domain query string false "Domain substring"
// @Param province query string false "Province substring"
// @Param statuses query []string false "Status filter" collectionFormat(multi)
// @Param levels query []string false "Level filter" collectionFormat(multi)
// @Param companyIds query []int false "Company filter" collectionFormat(multi)
// @Param ownerIds query []int false "Owner filter (admins only)" collectionFormat(multi)
// @Param createdFrom query string false "Created on or after (date)"
// @Param createdTo query string false "Created on or before (date)"
// @Param hasOpenFollowUp query bool false "Open follow-up existence"
// @Param lastCallFrom query string false "Last call on or after (date)"
// @Param lastCallTo query string false "Last call on or before (date)"
// @Success 200 {array} domain.ContactReportDTO
// @Security BearerAuth
// @Router /contacts [get]
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	filters := repository.ContactFilters{
		Name:            r.URL.Query().Get("name"),
		FirstName:       r.URL.Query().Get("firstName"),
		LastName:        r.URL.Query().Get("lastName"),
		Phone:           r.URL.Query().Get("phone"),
		Role:            r.URL.Query().Get("role"),
		Domain:          r.URL.Query().Get("domain"),
		Province:        r.URL.Query().Get("province"),
		CompanyIDs:      queryUints(r, "companyIds"),
		Created:         queryDateRange(r, "createdFrom", "createdTo"),
		HasOpenFollowUp: queryBool(r, "hasOpenFollowUp"),
		LastCall:        queryDateRange(r, "lastCallFrom", "lastCallTo"),
	}
	for _, s := range queryStrings(r, "statuses") {
		status := domain.ContactStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter value")
			return
		}
		filters.Statuses = append(filters.Statuses, status)
	}
	for _, l := range queryStrings(r, "levels") {
		level := domain.Level(l)
		if !level.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid level filter value")
			return
		}
		filters.Levels = append(filters.Levels, level)
	}

	contacts, err := h.contactService.List(r.Context(), caller, filters, queryUints(r, "ownerIds"))
	if err != nil {
		h.logger.Error("failed to list contacts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list contacts")
		return
	}

	respondJSON(w, http.StatusOK, contacts)
}

// ContactOptions godoc
// @Summary Contact picker options
// @Description Scoped id/full-name pairs for select lists
// @Tags Contacts
// @Produce json
// @Success 200 {array} domain.ContactOptionDTO
// @Security BearerAuth
// @Router /contacts/options [get]
func (h *ContactHandler) ContactOptions(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	options, err := h.contactService.Options(r.Context(), caller)
	if err != nil {
		h.logger.Error("failed to list contact options", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list contact options")
		return
	}

	respondJSON(w, http.StatusOK, options)
}

// GetContact godoc
// @Summary Get contact
// @Description Single contact shaped like a listing row
// @Tags Contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} domain.ContactReportDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contacts/{id} [get]
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	contact, err := h.contactService.Get(r.Context(), caller, id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get contact", zap.Error(err), zap.Uint("contact_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to get contact")
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// GetContactProfile godoc
// @Summary Contact profile
// @Description Contact detail with call history, follow-ups, and colleagues
// @Tags Contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} domain.ContactProfileDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contacts/{id}/profile [get]
func (h *ContactHandler) GetContactProfile(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	profile, err := h.contactService.Profile(r.Context(), caller, id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get contact profile", zap.Error(err), zap.Uint("contact_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to get contact profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// CreateContact godoc
// @Summary Create contact
// @Description Create a new contact, optionally creating its company by name
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body domain.CreateContactRequest true "Contact data"
// @Success 201 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /contacts [post]
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	var req domain.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	contact, err := h.contactService.Create(r.Context(), caller, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create contact", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create contact")
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}

// UpdateContact godoc
// @Summary Update contact
// @Description Partial update; only supplied fields change
// @Tags Contacts
// @Accept json
// @Produce json
// @Param id path int true "Contact ID"
// @Param request body domain.UpdateContactRequest true "Fields to change"
// @Success 200 {object} domain.ContactDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contacts/{id} [put]
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	var req domain.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	contact, err := h.contactService.Update(r.Context(), caller, id, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update contact", zap.Error(err), zap.Uint("contact_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to update contact")
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// BulkReassignContacts godoc
// @Summary Bulk owner reassignment
// @Description Move contacts to a new owner; non-admins only affect rows they own
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body domain.BulkReassignRequest true "Contact IDs and new owner"
// @Success 200 {object} domain.BulkReassignResultDTO
// @Security BearerAuth
// @Router /contacts/bulk-owner [put]
func (h *ContactHandler) BulkReassignContacts(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	var req domain.BulkReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.contactService.BulkReassign(r.Context(), caller, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to reassign contacts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to reassign contacts")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// DeleteContact godoc
// @Summary Delete contact
// @Description Delete a contact and its calls and follow-ups
// @Tags Contacts
// @Param id path int true "Contact ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	if err := h.contactService.Delete(r.Context(), caller, id); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to delete contact", zap.Error(err), zap.Uint("contact_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete contact")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
