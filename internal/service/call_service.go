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

type CallService struct {
	callRepo    *repository.CallRepository
	contactRepo *repository.ContactRepository
	logger      *zap.Logger
}

func NewCallService(
	callRepo *repository.CallRepository,
	contactRepo *repository.ContactRepository,
	logger *zap.Logger,
) *CallService {
	return &CallService{
		callRepo:    callRepo,
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// List runs the scoped call report query
func (s *CallService) List(ctx context.Context, caller *auth.Caller, filters repository.CallFilters, requestedOwnerIDs []uint) ([]domain.CallDTO, error) {
	filters.Scope = repository.ResolveOwnerScope(caller, requestedOwnerIDs)

	rows, err := s.callRepo.ListWithFilters(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}

	dtos := make([]domain.CallDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToCallReportDTO(&rows[i])
	}
	return dtos, nil
}

// Create logs a call against a contact the caller can see
func (s *CallService) Create(ctx context.Context, caller *auth.Caller, req *domain.CreateCallRequest) (*domain.CallDTO, error) {
	status := domain.CallStatus(req.Status)
	if !status.IsValid() {
		return nil, ErrInvalidStatus
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

	call := &domain.Call{
		ContactID:   req.ContactID,
		CalledAt:    req.CalledAt,
		Status:      status,
		Description: req.Description,
	}
	if err := s.callRepo.Create(ctx, call); err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	s.logger.Info("call logged",
		zap.Uint("call_id", call.ID),
		zap.Uint("contact_id", call.ContactID),
		zap.String("status", string(call.Status)),
	)

	call.Contact = contact
	dto := mapper.ToCallDTO(call)
	return &dto, nil
}

func (s *CallService) Delete(ctx context.Context, caller *auth.Caller, id uint) error {
	ownerID, err := s.callRepo.ContactOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get call: %w", err)
	}
	if err := requireContactOwnership(caller, ownerID); err != nil {
		return err
	}

	if err := s.callRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}
	return nil
}

// requireContactOwnership hides rows whose contact's owner is not the
// non-admin caller
func requireContactOwnership(caller *auth.Caller, ownerID *uint) error {
	if caller.IsAdmin() {
		return nil
	}
	if ownerID == nil || *ownerID != caller.AccountID {
		return ErrNotFound
	}
	return nil
}
