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

// CompanyHandler handles HTTP requests for companies
type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

// ListCompanies godoc
// @Summary List companies
// @Description Company report; non-admins only see companies with a contact they own
// @Tags Companies
// @Produce json
// @Param name query string false "Name substring"
// @Param statuses query []string false "Status filter" collectionFormat(multi)
// @Param levels query []string false "Level filter" collectionFormat(multi)
// @Param ownerIds query []int false "Owner filter (admins only)" collectionFormat(multi)
// @Param createdFrom query string false "Created on or after (date)"
// @Param createdTo query string false "Created on or before (date)"
// @Param hasOpenFollowUp query bool false "Open follow-up existence"
// @Success 200 {array} domain.CompanyReportDTO
// @Security BearerAuth
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	filters := repository.CompanyFilters{
		Name:            r.URL.Query().Get("name"),
		Created:         queryDateRange(r, "createdFrom", "createdTo"),
		HasOpenFollowUp: queryBool(r, "hasOpenFollowUp"),
	}
	for _, s := range queryStrings(r, "statuses") {
		status := domain.CompanyStatus(s)
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

	companies, err := h.companyService.List(r.Context(), caller, filters, queryUints(r, "ownerIds"))
	if err != nil {
		h.logger.Error("failed to list companies", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list companies")
		return
	}

	respondJSON(w, http.StatusOK, companies)
}

// CompanyOptions godoc
// @Summary Company picker options
// @Description id/name pairs ordered by name
// @Tags Companies
// @Produce json
// @Success 200 {array} domain.CompanyOptionDTO
// @Security BearerAuth
// @Router /companies/options [get]
func (h *CompanyHandler) CompanyOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.companyService.Options(r.Context())
	if err != nil {
		h.logger.Error("failed to list company options", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list company options")
		return
	}

	respondJSON(w, http.StatusOK, options)
}

// GetCompany godoc
// @Summary Get company
// @Description Single company shaped like a listing row
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} domain.CompanyReportDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	company, err := h.companyService.Get(r.Context(), caller, id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get company", zap.Error(err), zap.Uint("company_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to get company")
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// GetCompanyProfile godoc
// @Summary Company profile
// @Description Company detail with contacts and their joined activity
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} domain.CompanyProfileDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /companies/{id}/profile [get]
func (h *CompanyHandler) GetCompanyProfile(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	profile, err := h.companyService.Profile(r.Context(), caller, id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get company profile", zap.Error(err), zap.Uint("company_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to get company profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// CreateCompany godoc
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body domain.CreateCompanyRequest true "Company data"
// @Success 201 {object} domain.CompanyDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())

	var req domain.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Create(r.Context(), caller, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create company", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create company")
		return
	}

	respondJSON(w, http.StatusCreated, company)
}

// UpdateCompany godoc
// @Summary Update company
// @Description Partial update; only supplied fields change
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param request body domain.UpdateCompanyRequest true "Fields to change"
// @Success 200 {object} domain.CompanyDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /companies/{id} [put]
func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustFromContext(r.Context())
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	var req domain.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Update(r.Context(), caller, id, &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update company", zap.Error(err), zap.Uint("company_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to update company")
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// DeleteCompany godoc
// @Summary Delete company
// @Description Delete a company; its contacts keep existing with no company
// @Tags Companies
// @Param id path int true "Company ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	if err := h.companyService.Delete(r.Context(), id); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to delete company", zap.Error(err), zap.Uint("company_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete company")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
