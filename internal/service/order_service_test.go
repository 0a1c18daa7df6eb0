package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
	"github.com/fardapack/crm-api/internal/service"
	"github.com/fardapack/crm-api/internal/testutil"
)

func newOrderService(db *gorm.DB) *service.OrderService {
	return service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewContactRepository(db),
		repository.NewProductRepository(db),
		zap.NewNop(),
	)
}

func TestOrderService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	agent := testutil.CreateAccount(t, db, "agent", "secret1", domain.RoleAgent)
	product := testutil.CreateProduct(t, db, "boxes", "Carton 40x40")
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", agent, nil)

	t.Run("defaults applied", func(t *testing.T) {
		dto, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateOrderRequest{
			ProductID:   product.ID,
			TotalAmount: 1500,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPursuing, dto.Status)
		assert.NotEmpty(t, dto.OrderedAt)
		assert.Equal(t, "Carton 40x40", dto.ProductName)
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateOrderRequest{
			ProductID: 99999,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateOrderRequest{
			ProductID: product.ID,
			Status:    "shipped",
		})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("agent can order for own contact", func(t *testing.T) {
		dto, err := svc.Create(ctx, testutil.CallerFor(agent), &domain.CreateOrderRequest{
			ProductID: product.ID,
			ContactID: &contact.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.ContactID)
		assert.Equal(t, contact.ID, *dto.ContactID)
	})

	t.Run("agent cannot order for someone else's contact", func(t *testing.T) {
		other := testutil.CreateContact(t, db, "Grace", "Hopper", admin, nil)
		_, err := svc.Create(ctx, testutil.CallerFor(agent), &domain.CreateOrderRequest{
			ProductID: product.ID,
			ContactID: &other.ID,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestOrderService_List_ContactlessOrdersAdminOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	agent := testutil.CreateAccount(t, db, "agent", "secret1", domain.RoleAgent)
	product := testutil.CreateProduct(t, db, "boxes", "Carton 40x40")
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", agent, nil)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&domain.Order{
		ContactID: &contact.ID,
		ProductID: product.ID,
		OrderedAt: now,
		Status:    domain.OrderStatusPursuing,
	}).Error)
	require.NoError(t, db.Create(&domain.Order{
		ProductID: product.ID,
		OrderedAt: now,
		Status:    domain.OrderStatusApproved,
	}).Error)

	adminRows, err := svc.List(ctx, testutil.CallerFor(admin), repository.OrderFilters{}, nil)
	require.NoError(t, err)
	assert.Len(t, adminRows, 2)

	agentRows, err := svc.List(ctx, testutil.CallerFor(agent), repository.OrderFilters{}, nil)
	require.NoError(t, err)
	require.Len(t, agentRows, 1)
	require.NotNil(t, agentRows[0].ContactID)
	assert.Equal(t, contact.ID, *agentRows[0].ContactID)
}

func TestOrderService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newOrderService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	product := testutil.CreateProduct(t, db, "boxes", "Carton 40x40")

	order := &domain.Order{
		ProductID: product.ID,
		OrderedAt: time.Now().UTC(),
		Status:    domain.OrderStatusPursuing,
	}
	require.NoError(t, db.Create(order).Error)
	id := order.ID

	t.Run("status patch", func(t *testing.T) {
		status := string(domain.OrderStatusApproved)
		dto, err := svc.Update(ctx, testutil.CallerFor(admin), id, &domain.UpdateOrderRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusApproved, dto.Status)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		status := "shipped"
		_, err := svc.Update(ctx, testutil.CallerFor(admin), id, &domain.UpdateOrderRequest{Status: &status})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})
}
