package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/mapper"
	"github.com/fardapack/crm-api/internal/repository"
)

type FollowUpService struct {
	followUpRepo *repository.FollowUpRepository
	contactRepo  *repository.ContactRepository
	logger       *zap.Logger
}

func NewFollowUpService(
	followUpRepo *repository.FollowUpRepository,
	contactRepo *repository.ContactRepository,
	logger *zap.Logger,
) *FollowUpService {
	return &FollowUpService{
		followUpRepo: followUpRepo,
		contactRepo:  contactRepo,
		logger:       logger,
	}
}

// List runs the scoped follow-up report query
func (s *FollowUpService) List(ctx context.Context, caller *auth.Caller, filters repository.FollowUpFilters, requestedOwnerIDs []uint) ([]domain.FollowUpDTO, error) {
	filters.Scope = repository.ResolveOwnerScope(caller, requestedOwnerIDs)

	rows, err := s.followUpRepo.ListWithFilters(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}

	dtos := make([]domain.FollowUpDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToFollowUpReportDTO(&rows[i])
	}
	return dtos, nil
}

func (s *FollowUpService) Create(ctx context.Context, caller *auth.Caller, req *domain.CreateFollowUpRequest) (*domain.FollowUpDTO, error) {
	status := domain.FollowUpStatusInProgress
	if req.Status != "" {
		status = domain.FollowUpStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	contact, err := s.contactRepo.GetByID(ctx, req.ContactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if err := requireContactOwnership(caller, contact.OwnerID); err != nil {
		return nil, err
	}

	followUp := &domain.FollowUp{
		ContactID: req.ContactID,
		Title:     req.Title,
		Details:   req.Details,
		DueAt:     req.DueAt,
		Status:    status,
	}
	if err := s.followUpRepo.Create(ctx, followUp); err != nil {
		return nil, fmt.Errorf("failed to create follow-up: %w", err)
	}

	s.logger.Info("follow-up created",
		zap.Uint("followup_id", followUp.ID),
		zap.Uint("contact_id", followUp.ContactID),
	)

	followUp.Contact = contact
	dto := mapper.ToFollowUpDTO(followUp)
	return &dto, nil
}

// UpdateStatus transitions a follow-up between in_progress and done.
// Values outside the closed set are rejected before any write.
func (s *FollowUpService) UpdateStatus(ctx context.Context, caller *auth.Caller, id uint, req *domain.UpdateFollowUpStatusRequest) (*domain.FollowUpDTO, error) {
	status := domain.FollowUpStatus(req.Status)
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	if err := s.checkAccess(ctx, caller, id); err != nil {
		return nil, err
	}

	if err := s.followUpRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update follow-up status: %w", err)
	}

	updated, err := s.followUpRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload follow-up: %w", err)
	}
	dto := mapper.ToFollowUpDTO(updated)
	return &dto, nil
}

// Update applies a partial patch to title, details, or due time
func (s *FollowUpService) Update(ctx context.Context, caller *auth.Caller, id uint, req *domain.UpdateFollowUpRequest) (*domain.FollowUpDTO, error) {
	if err := s.checkAccess(ctx, caller, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Details != nil {
		fields["details"] = *req.Details
	}
	if req.DueAt != nil {
		fields["due_at"] = *req.DueAt
	}

	if err := s.followUpRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update follow-up: %w", err)
	}

	updated, err := s.followUpRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload follow-up: %w", err)
	}
	dto := mapper.ToFollowUpDTO(updated)
	return &dto, nil
}

func (s *FollowUpService) Delete(ctx context.Context, caller *auth.Caller, id uint) error {
	if err := s.checkAccess(ctx, caller, id); err != nil {
		return err
	}
	if err := s.followUpRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete follow-up: %w", err)
	}
	return nil
}

func (s *FollowUpService) checkAccess(ctx context.Context, caller *auth.Caller, id uint) error {
	ownerID, err := s.followUpRepo.ContactOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get follow-up: %w", err)
	}
	return requireContactOwnership(caller, ownerID)
}
