package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/mapper"
	"github.com/fardapack/crm-api/internal/repository"
)

// AccountService handles account administration. All mutating operations
// are admin-only; the role check happens in the HTTP layer.
type AccountService struct {
	accountRepo *repository.AccountRepository
	cfg         *config.AuthConfig
	logger      *zap.Logger
}

func NewAccountService(accountRepo *repository.AccountRepository, cfg *config.AuthConfig, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *AccountService) List(ctx context.Context) ([]domain.AccountDTO, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	dtos := make([]domain.AccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = mapper.ToAccountDTO(&accounts[i])
	}
	return dtos, nil
}

// Options returns the id/username pairs used to populate owner pickers
func (s *AccountService) Options(ctx context.Context) ([]domain.OwnerOptionDTO, error) {
	options, err := s.accountRepo.ListOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list account options: %w", err)
	}
	return options, nil
}

func (s *AccountService) Create(ctx context.Context, req *domain.CreateAccountRequest) (*domain.AccountDTO, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrNameRequired
	}
	if len(req.Password) < s.cfg.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := domain.RoleAgent
	if req.Role != "" {
		role = domain.Role(req.Role)
		if !role.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	if _, err := s.accountRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Username:        username,
		PasswordHash:    string(hash),
		Role:            role,
		LinkedContactID: req.LinkedContactID,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		// A concurrent insert can slip past the lookup above and land on
		// the unique index instead
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created",
		zap.Uint("account_id", account.ID),
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)),
	)

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

// ChangePassword replaces an account's password hash. All existing
// sessions stay valid.
func (s *AccountService) ChangePassword(ctx context.Context, id uint, req *domain.ChangePasswordRequest) error {
	if len(req.Password) < s.cfg.MinPasswordLength {
		return ErrPasswordTooShort
	}

	if _, err := s.accountRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePasswordHash(ctx, id, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("account password changed", zap.Uint("account_id", id))
	return nil
}

// Delete removes an account along with its sessions and unassigns its
// contacts. Admins cannot delete themselves.
func (s *AccountService) Delete(ctx context.Context, caller *auth.Caller, id uint) error {
	if caller.AccountID == id {
		return ErrSelfDelete
	}

	if _, err := s.accountRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("account deleted", zap.Uint("account_id", id))
	return nil
}
