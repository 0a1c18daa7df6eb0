package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/mapper"
	"github.com/fardapack/crm-api/internal/repository"
)

type CompanyService struct {
	companyRepo  *repository.CompanyRepository
	contactRepo  *repository.ContactRepository
	callRepo     *repository.CallRepository
	followUpRepo *repository.FollowUpRepository
	logger       *zap.Logger
}

func NewCompanyService(
	companyRepo *repository.CompanyRepository,
	contactRepo *repository.ContactRepository,
	callRepo *repository.CallRepository,
	followUpRepo *repository.FollowUpRepository,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo:  companyRepo,
		contactRepo:  contactRepo,
		callRepo:     callRepo,
		followUpRepo: followUpRepo,
		logger:       logger,
	}
}

// List runs the scoped company report query. Non-admin callers only see
// companies with at least one contact they own.
func (s *CompanyService) List(ctx context.Context, caller *auth.Caller, filters repository.CompanyFilters, requestedOwnerIDs []uint) ([]domain.CompanyReportDTO, error) {
	filters.Scope = repository.ResolveOwnerScope(caller, requestedOwnerIDs)

	rows, err := s.companyRepo.ListWithFilters(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	dtos := make([]domain.CompanyReportDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToCompanyReportDTO(&rows[i])
	}
	return dtos, nil
}

func (s *CompanyService) Get(ctx context.Context, caller *auth.Caller, id uint) (*domain.CompanyReportDTO, error) {
	scope := repository.ResolveOwnerScope(caller, nil)
	row, err := s.companyRepo.GetReportByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	dto := mapper.ToCompanyReportDTO(row)
	return &dto, nil
}

// Profile assembles the company detail page: the report row plus its
// contacts and their joined call and follow-up history.
func (s *CompanyService) Profile(ctx context.Context, caller *auth.Caller, id uint) (*domain.CompanyProfileDTO, error) {
	scope := repository.ResolveOwnerScope(caller, nil)
	row, err := s.companyRepo.GetReportByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	contacts, err := s.contactRepo.ListByCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list company contacts: %w", err)
	}
	calls, err := s.callRepo.ListByCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list company calls: %w", err)
	}
	followUps, err := s.followUpRepo.ListByCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list company follow-ups: %w", err)
	}

	profile := &domain.CompanyProfileDTO{
		Company:   mapper.ToCompanyReportDTO(row),
		Contacts:  make([]domain.ContactDTO, len(contacts)),
		Calls:     make([]domain.CallDTO, len(calls)),
		FollowUps: make([]domain.FollowUpDTO, len(followUps)),
	}
	for i := range contacts {
		profile.Contacts[i] = mapper.ToContactDTO(&contacts[i])
	}
	for i := range calls {
		profile.Calls[i] = mapper.ToCallReportDTO(&calls[i])
	}
	for i := range followUps {
		profile.FollowUps[i] = mapper.ToFollowUpReportDTO(&followUps[i])
	}
	return profile, nil
}

func (s *CompanyService) Create(ctx context.Context, caller *auth.Caller, req *domain.CreateCompanyRequest) (*domain.CompanyDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	status := domain.CompanyStatusNone
	if req.Status != "" {
		status = domain.CompanyStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}
	level := domain.LevelNone
	if req.Level != "" {
		level = domain.Level(req.Level)
		if !level.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	creator := caller.AccountID
	company := &domain.Company{
		Name:      name,
		Phone:     strings.TrimSpace(req.Phone),
		Address:   req.Address,
		Note:      req.Note,
		Level:     level,
		Status:    status,
		CreatedBy: &creator,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.logger.Info("company created",
		zap.Uint("company_id", company.ID),
		zap.Uint("created_by", caller.AccountID),
	)

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// GetOrCreateByName resolves a company reference supplied as free text.
// Repeated calls with the same trimmed name return the same company.
func (s *CompanyService) GetOrCreateByName(ctx context.Context, caller *auth.Caller, name string) (*domain.CompanyDTO, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrNameRequired
	}

	company, err := s.companyRepo.GetByName(ctx, trimmed)
	if err == nil {
		dto := mapper.ToCompanyDTO(company)
		return &dto, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up company: %w", err)
	}

	creator := caller.AccountID
	company = &domain.Company{
		Name:      trimmed,
		Level:     domain.LevelNone,
		Status:    domain.CompanyStatusNone,
		CreatedBy: &creator,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// Update applies a partial patch; a zero-field patch is a no-op success
func (s *CompanyService) Update(ctx context.Context, caller *auth.Caller, id uint, req *domain.UpdateCompanyRequest) (*domain.CompanyDTO, error) {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	fields := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		fields["name"] = name
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Note != nil {
		fields["note"] = *req.Note
	}
	if req.Level != nil {
		level := domain.Level(*req.Level)
		if !level.IsValid() {
			return nil, ErrInvalidStatus
		}
		fields["level"] = level
	}
	if req.Status != nil {
		status := domain.CompanyStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		fields["status"] = status
	}

	if err := s.companyRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	updated, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload company: %w", err)
	}
	dto := mapper.ToCompanyDTO(updated)
	return &dto, nil
}

// Delete removes a company; referencing contacts keep existing with a
// null company reference
func (s *CompanyService) Delete(ctx context.Context, id uint) error {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get company: %w", err)
	}
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return nil
}

// Options returns all companies as select-list entries
func (s *CompanyService) Options(ctx context.Context) ([]domain.CompanyOptionDTO, error) {
	options, err := s.companyRepo.ListOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list company options: %w", err)
	}
	return options, nil
}
