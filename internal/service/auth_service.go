package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/mapper"
	"github.com/fardapack/crm-api/internal/repository"
)

type AuthService struct {
	accountRepo *repository.AccountRepository
	sessionRepo *repository.SessionRepository
	cfg         *config.AuthConfig
	logger      *zap.Logger
}

func NewAuthService(
	accountRepo *repository.AccountRepository,
	sessionRepo *repository.SessionRepository,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Login verifies credentials and issues an opaque session token
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponseDTO, error) {
	account, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &domain.Session{
		Token:     newSessionToken(),
		AccountID: account.ID,
	}
	if ttl := s.cfg.SessionTTL(); ttl > 0 {
		expiresAt := time.Now().UTC().Add(ttl)
		session.ExpiresAt = &expiresAt
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("account logged in",
		zap.Uint("account_id", account.ID),
		zap.String("username", account.Username),
	)

	resp := &domain.LoginResponseDTO{
		Token:   session.Token,
		Account: mapper.ToAccountDTO(account),
	}
	if session.ExpiresAt != nil {
		exp := session.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &exp
	}
	return resp, nil
}

// Logout deletes the session, invalidating its token immediately
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ResolveToken maps a bearer token to a caller. Implements
// auth.TokenResolver. Expired sessions are deleted on sight.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*auth.Caller, error) {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.IsExpired(time.Now().UTC()) {
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, ErrUnauthorized
	}

	if session.Account == nil {
		return nil, ErrUnauthorized
	}

	return &auth.Caller{
		AccountID:       session.Account.ID,
		Username:        session.Account.Username,
		Role:            session.Account.Role,
		LinkedContactID: session.Account.LinkedContactID,
	}, nil
}

// Me returns the caller's own account
func (s *AuthService) Me(ctx context.Context, caller *auth.Caller) (*domain.AccountDTO, error) {
	account, err := s.accountRepo.GetByID(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

func newSessionToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
