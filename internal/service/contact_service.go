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

type ContactService struct {
	contactRepo  *repository.ContactRepository
	companyRepo  *repository.CompanyRepository
	callRepo     *repository.CallRepository
	followUpRepo *repository.FollowUpRepository
	logger       *zap.Logger
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	companyRepo *repository.CompanyRepository,
	callRepo *repository.CallRepository,
	followUpRepo *repository.FollowUpRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo:  contactRepo,
		companyRepo:  companyRepo,
		callRepo:     callRepo,
		followUpRepo: followUpRepo,
		logger:       logger,
	}
}

// List runs the scoped report query. requestedOwnerIDs only narrows for
// admins; non-admin callers are pinned to their own rows regardless.
func (s *ContactService) List(ctx context.Context, caller *auth.Caller, filters repository.ContactFilters, requestedOwnerIDs []uint) ([]domain.ContactReportDTO, error) {
	filters.Scope = repository.ResolveOwnerScope(caller, requestedOwnerIDs)

	rows, err := s.contactRepo.ListWithFilters(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactReportDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToContactReportDTO(&rows[i])
	}
	return dtos, nil
}

// Get returns a single contact shaped like a listing row. Rows outside
// the caller's scope read as not found.
func (s *ContactService) Get(ctx context.Context, caller *auth.Caller, id uint) (*domain.ContactReportDTO, error) {
	scope := repository.ResolveOwnerScope(caller, nil)
	row, err := s.contactRepo.GetReportByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	dto := mapper.ToContactReportDTO(row)
	return &dto, nil
}

// Profile assembles the contact detail page: the report row plus call
// history, follow-ups, and colleagues at the same company.
func (s *ContactService) Profile(ctx context.Context, caller *auth.Caller, id uint) (*domain.ContactProfileDTO, error) {
	scope := repository.ResolveOwnerScope(caller, nil)
	row, err := s.contactRepo.GetReportByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	calls, err := s.callRepo.ListByContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact calls: %w", err)
	}
	followUps, err := s.followUpRepo.ListByContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact follow-ups: %w", err)
	}

	profile := &domain.ContactProfileDTO{
		Contact:    mapper.ToContactReportDTO(row),
		Calls:      make([]domain.CallDTO, len(calls)),
		FollowUps:  make([]domain.FollowUpDTO, len(followUps)),
		Colleagues: []domain.ContactDTO{},
	}
	for i := range calls {
		profile.Calls[i] = mapper.ToCallDTO(&calls[i])
	}
	for i := range followUps {
		profile.FollowUps[i] = mapper.ToFollowUpDTO(&followUps[i])
	}

	if row.CompanyID != nil {
		colleagues, err := s.contactRepo.ListByCompany(ctx, *row.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list colleagues: %w", err)
		}
		for i := range colleagues {
			if colleagues[i].ID == id {
				continue
			}
			profile.Colleagues = append(profile.Colleagues, mapper.ToContactDTO(&colleagues[i]))
		}
	}
	return profile, nil
}

// Options returns the scoped picker list of contacts
func (s *ContactService) Options(ctx context.Context, caller *auth.Caller) ([]domain.ContactOptionDTO, error) {
	scope := repository.ResolveOwnerScope(caller, nil)
	options, err := s.contactRepo.ListOptions(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact options: %w", err)
	}
	return options, nil
}

func (s *ContactService) Create(ctx context.Context, caller *auth.Caller, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	first := strings.TrimSpace(req.FirstName)
	if first == "" {
		return nil, ErrNameRequired
	}
	last := strings.TrimSpace(req.LastName)

	phone := strings.TrimSpace(req.Phone)
	if phone != "" {
		taken, err := s.contactRepo.PhoneExists(ctx, phone, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		}
		if taken {
			return nil, ErrDuplicatePhone
		}
	}

	status := domain.ContactStatusNone
	if req.Status != "" {
		status = domain.ContactStatus(req.Status)
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

	companyID, err := s.resolveCompany(ctx, caller, req.CompanyID, req.CompanyName)
	if err != nil {
		return nil, err
	}

	// Non-admins always own what they create; admins may assign anyone
	ownerID := req.OwnerID
	if !caller.IsAdmin() {
		id := caller.AccountID
		ownerID = &id
	}

	creator := caller.AccountID
	contact := &domain.Contact{
		FirstName: first,
		LastName:  last,
		FullName:  domain.DeriveFullName(first, last),
		Phone:     phone,
		Role:      strings.TrimSpace(req.Role),
		CompanyID: companyID,
		Note:      req.Note,
		Status:    status,
		Domain:    strings.TrimSpace(req.Domain),
		Province:  strings.TrimSpace(req.Province),
		Level:     level,
		OwnerID:   ownerID,
		CreatedBy: &creator,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("contact created",
		zap.Uint("contact_id", contact.ID),
		zap.Uint("created_by", caller.AccountID),
	)

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

// Update applies a partial patch. Only explicitly supplied fields change;
// a zero-field patch is a no-op success. When either name part is
// supplied, the full name is recomputed from the merged parts.
func (s *ContactService) Update(ctx context.Context, caller *auth.Caller, id uint, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	existing, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if err := s.requireOwnership(caller, existing.OwnerID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}

	if req.FirstName != nil || req.LastName != nil {
		first := existing.FirstName
		last := existing.LastName
		if req.FirstName != nil {
			first = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			last = strings.TrimSpace(*req.LastName)
		}
		if first == "" {
			return nil, ErrNameRequired
		}
		fields["first_name"] = first
		fields["last_name"] = last
		fields["full_name"] = domain.DeriveFullName(first, last)
	}

	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone != "" {
			taken, err := s.contactRepo.PhoneExists(ctx, phone, &id)
			if err != nil {
				return nil, fmt.Errorf("failed to check phone: %w", err)
			}
			if taken {
				return nil, ErrDuplicatePhone
			}
		}
		fields["phone"] = phone
	}

	if req.Role != nil {
		fields["role"] = strings.TrimSpace(*req.Role)
	}
	if req.CompanyID != nil {
		fields["company_id"] = *req.CompanyID
	}
	if req.Note != nil {
		fields["note"] = *req.Note
	}
	if req.Status != nil {
		status := domain.ContactStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		fields["status"] = status
	}
	if req.Domain != nil {
		fields["domain"] = strings.TrimSpace(*req.Domain)
	}
	if req.Province != nil {
		fields["province"] = strings.TrimSpace(*req.Province)
	}
	if req.Level != nil {
		level := domain.Level(*req.Level)
		if !level.IsValid() {
			return nil, ErrInvalidStatus
		}
		fields["level"] = level
	}
	if req.OwnerID != nil {
		fields["owner_id"] = *req.OwnerID
	}

	if err := s.contactRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	updated, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload contact: %w", err)
	}
	dto := mapper.ToContactDTO(updated)
	return &dto, nil
}

// BulkReassign moves contacts to a new owner. Non-admin callers only
// affect contacts they currently own; everything else is silently left
// unchanged. Returns the count of rows actually changed.
func (s *ContactService) BulkReassign(ctx context.Context, caller *auth.Caller, req *domain.BulkReassignRequest) (*domain.BulkReassignResultDTO, error) {
	scope := repository.ResolveOwnerScope(caller, nil)
	updated, err := s.contactRepo.BulkReassignOwner(ctx, req.ContactIDs, req.OwnerID, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to reassign contacts: %w", err)
	}

	s.logger.Info("contacts reassigned",
		zap.Int("requested", len(req.ContactIDs)),
		zap.Int64("updated", updated),
		zap.Uint("caller_id", caller.AccountID),
	)

	return &domain.BulkReassignResultDTO{Updated: updated}, nil
}

// Delete removes a contact; its calls and follow-ups cascade
func (s *ContactService) Delete(ctx context.Context, caller *auth.Caller, id uint) error {
	existing, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get contact: %w", err)
	}
	if err := s.requireOwnership(caller, existing.OwnerID); err != nil {
		return err
	}

	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// resolveCompany turns either an explicit id or a free-text name into a
// company reference, creating the company when the name is new
func (s *ContactService) resolveCompany(ctx context.Context, caller *auth.Caller, companyID *uint, companyName string) (*uint, error) {
	if companyID != nil {
		if _, err := s.companyRepo.GetByID(ctx, *companyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get company: %w", err)
		}
		return companyID, nil
	}

	name := strings.TrimSpace(companyName)
	if name == "" {
		return nil, nil
	}

	company, err := s.companyRepo.GetByName(ctx, name)
	if err == nil {
		return &company.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up company: %w", err)
	}

	creator := caller.AccountID
	company = &domain.Company{
		Name:      name,
		Level:     domain.LevelNone,
		Status:    domain.CompanyStatusNone,
		CreatedBy: &creator,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &company.ID, nil
}

// requireOwnership hides rows outside a non-admin caller's scope
func (s *ContactService) requireOwnership(caller *auth.Caller, ownerID *uint) error {
	if caller.IsAdmin() {
		return nil
	}
	if ownerID == nil || *ownerID != caller.AccountID {
		return ErrNotFound
	}
	return nil
}
