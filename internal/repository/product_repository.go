package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
)

// ProductFilters holds the optional criteria for product listings
type ProductFilters struct {
	Name     string
	Category string
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, filters ProductFilters) ([]domain.Product, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{})
	if filters.Name != "" {
		query = query.Where("name LIKE ?", "%"+filters.Name+"%")
	}
	if filters.Category != "" {
		query = query.Where("category LIKE ?", "%"+filters.Category+"%")
	}

	var products []domain.Product
	err := query.Order("created_at DESC, id DESC").Find(&products).Error
	return products, err
}

// UpdateFields applies a partial patch; an empty map is a no-op
func (r *ProductRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}
