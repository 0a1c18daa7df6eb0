package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
)

// OrderFilters holds the optional criteria for order listings. The scope
// applies to the owner of the order's contact; orders with no contact are
// only visible to admins.
type OrderFilters struct {
	ContactName string
	Statuses    []domain.OrderStatus
	ProductIDs  []uint
	Ordered     DateRange
	Scope       OwnerScope
}

// OrderReportRow is an order listing row with display names attached
type OrderReportRow struct {
	ID          uint      `gorm:"column:id"`
	ContactID   *uint     `gorm:"column:contact_id"`
	ContactName string    `gorm:"column:contact_name"`
	CompanyID   *uint     `gorm:"column:company_id"`
	CompanyName string    `gorm:"column:company_name"`
	ProductID   uint      `gorm:"column:product_id"`
	ProductName string    `gorm:"column:product_name"`
	OrderedAt   time.Time `gorm:"column:ordered_at"`
	Status      string    `gorm:"column:status"`
	TotalAmount float64   `gorm:"column:total_amount"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

const orderReportSelect = `o.id, o.contact_id, o.company_id, o.product_id, o.ordered_at, o.status,
o.total_amount, o.created_at, o.updated_at,
COALESCE(u.full_name, '') AS contact_name,
COALESCE(c.name, '') AS company_name,
COALESCE(p.name, '') AS product_name`

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Company").
		Preload("Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListWithFilters runs the scoped order report query, ordered by order
// date descending.
func (r *OrderRepository) ListWithFilters(ctx context.Context, filters OrderFilters) ([]OrderReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("orders AS o").
		Select(orderReportSelect).
		Joins("LEFT JOIN contacts u ON u.id = o.contact_id").
		Joins("LEFT JOIN companies c ON c.id = o.company_id").
		Joins("LEFT JOIN products p ON p.id = o.product_id")

	query = filters.Scope.Apply(query, "u.owner_id")

	if filters.ContactName != "" {
		query = query.Where("u.full_name LIKE ?", "%"+filters.ContactName+"%")
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("o.status IN ?", filters.Statuses)
	}
	if len(filters.ProductIDs) > 0 {
		query = query.Where("o.product_id IN ?", filters.ProductIDs)
	}
	query = filters.Ordered.Apply(query, "o.ordered_at")

	var rows []OrderReportRow
	err := query.Order("o.ordered_at DESC, o.id DESC").Scan(&rows).Error
	return rows, err
}

// UpdateFields applies a partial patch; an empty map is a no-op
func (r *OrderRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Order{}, "id = ?", id).Error
}

// ContactOwnerID returns the owner of an order's contact, or nil when the
// order has no contact.
func (r *OrderRepository) ContactOwnerID(ctx context.Context, orderID uint) (*uint, error) {
	var row struct {
		OwnerID *uint `gorm:"column:owner_id"`
	}
	err := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("u.owner_id").
		Joins("LEFT JOIN contacts u ON u.id = o.contact_id").
		Where("o.id = ?", orderID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.OwnerID, nil
}
