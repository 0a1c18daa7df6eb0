package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id uint) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.db.WithContext(ctx).Order("username ASC").Find(&accounts).Error
	return accounts, err
}

// ListOptions returns accounts as owner select-list entries
func (r *AccountRepository) ListOptions(ctx context.Context) ([]domain.OwnerOptionDTO, error) {
	var options []domain.OwnerOptionDTO
	err := r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Select("id, username").
		Order("username ASC").
		Scan(&options).Error
	return options, err
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// Delete removes an account and its sessions. Contacts that pointed at it
// as owner fall back to unowned via ON DELETE SET NULL.
func (r *AccountRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Contact{}).
			Where("owner_id = ?", id).
			Update("owner_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Account{}, "id = ?", id).Error
	})
}
