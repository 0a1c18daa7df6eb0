package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/mapper"
	"github.com/fardapack/crm-api/internal/repository"
)

type OrderService struct {
	orderRepo   *repository.OrderRepository
	contactRepo *repository.ContactRepository
	productRepo *repository.ProductRepository
	logger      *zap.Logger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	contactRepo *repository.ContactRepository,
	productRepo *repository.ProductRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *OrderService) List(ctx context.Context, caller *auth.Caller, filters repository.OrderFilters, requestedOwnerIDs []uint) ([]domain.OrderDTO, error) {
	filters.Scope = repository.ResolveOwnerScope(caller, requestedOwnerIDs)

	rows, err := s.orderRepo.ListWithFilters(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToOrderReportDTO(&rows[i])
	}
	return dtos, nil
}

func (s *OrderService) Create(ctx context.Context, caller *auth.Caller, req *domain.CreateOrderRequest) (*domain.OrderDTO, error) {
	status := domain.OrderStatusPursuing
	if req.Status != "" {
		status = domain.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if req.ContactID != nil {
		contact, err := s.contactRepo.GetByID(ctx, *req.ContactID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get contact: %w", err)
		}
		if err := requireContactOwnership(caller, contact.OwnerID); err != nil {
			return nil, err
		}
	}

	orderedAt := time.Now().UTC()
	if req.OrderedAt != nil {
		orderedAt = *req.OrderedAt
	}

	order := &domain.Order{
		ContactID:   req.ContactID,
		CompanyID:   req.CompanyID,
		ProductID:   req.ProductID,
		OrderedAt:   orderedAt,
		Status:      status,
		TotalAmount: req.TotalAmount,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("product_id", order.ProductID),
		zap.String("status", string(order.Status)),
	)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) Update(ctx context.Context, caller *auth.Caller, id uint, req *domain.UpdateOrderRequest) (*domain.OrderDTO, error) {
	if err := s.checkAccess(ctx, caller, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		fields["status"] = status
	}
	if req.ProductID != nil {
		if _, err := s.productRepo.GetByID(ctx, *req.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		fields["product_id"] = *req.ProductID
	}
	if req.ContactID != nil {
		contact, err := s.contactRepo.GetByID(ctx, *req.ContactID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get contact: %w", err)
		}
		if err := requireContactOwnership(caller, contact.OwnerID); err != nil {
			return nil, err
		}
		fields["contact_id"] = *req.ContactID
	}
	if req.CompanyID != nil {
		fields["company_id"] = *req.CompanyID
	}
	if req.OrderedAt != nil {
		fields["ordered_at"] = *req.OrderedAt
	}
	if req.TotalAmount != nil {
		fields["total_amount"] = *req.TotalAmount
	}

	if err := s.orderRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	updated, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	dto := mapper.ToOrderDTO(updated)
	return &dto, nil
}

func (s *OrderService) Delete(ctx context.Context, caller *auth.Caller, id uint) error {
	if err := s.checkAccess(ctx, caller, id); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// checkAccess hides orders whose contact belongs to another account.
// Orders without a contact resolve to a nil owner, so non-admins never
// see them, matching the listing scope.
func (s *OrderService) checkAccess(ctx context.Context, caller *auth.Caller, id uint) error {
	ownerID, err := s.orderRepo.ContactOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to resolve order owner: %w", err)
	}
	return requireContactOwnership(caller, ownerID)
}
