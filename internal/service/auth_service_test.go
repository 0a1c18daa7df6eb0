package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
	"github.com/fardapack/crm-api/internal/service"
	"github.com/fardapack/crm-api/internal/testutil"
)

func newAuthService(db *gorm.DB, cfg *config.AuthConfig) *service.AuthService {
	return service.NewAuthService(
		repository.NewAccountRepository(db),
		repository.NewSessionRepository(db),
		cfg,
		zap.NewNop(),
	)
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db, &config.AuthConfig{SessionTTLDays: 30})
	ctx := context.Background()

	testutil.CreateAccount(t, db, "alice", "correct-horse", domain.RoleAgent)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		resp, err := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.Account.Username)
		require.NotNil(t, resp.ExpiresAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Username: "nobody", Password: "whatever"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthService_ResolveToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db, &config.AuthConfig{SessionTTLDays: 30})
	ctx := context.Background()

	account := testutil.CreateAccount(t, db, "alice", "correct-horse", domain.RoleAgent)
	resp, err := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	t.Run("valid token resolves to the caller", func(t *testing.T) {
		caller, err := svc.ResolveToken(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, caller.AccountID)
		assert.Equal(t, "alice", caller.Username)
		assert.Equal(t, domain.RoleAgent, caller.Role)
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		_, err := svc.ResolveToken(ctx, "nope")
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("expired session rejected and deleted", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		session := &domain.Session{Token: "expiredtoken", AccountID: account.ID, ExpiresAt: &past}
		require.NoError(t, db.Create(session).Error)

		_, err := svc.ResolveToken(ctx, "expiredtoken")
		assert.ErrorIs(t, err, service.ErrUnauthorized)

		err = db.First(&domain.Session{}, "token = ?", "expiredtoken").Error
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("nil expiry never expires", func(t *testing.T) {
		session := &domain.Session{Token: "foreventoken", AccountID: account.ID}
		require.NoError(t, db.Create(session).Error)

		caller, err := svc.ResolveToken(ctx, "foreventoken")
		require.NoError(t, err)
		assert.Equal(t, account.ID, caller.AccountID)
	})
}

func TestAuthService_Logout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db, &config.AuthConfig{SessionTTLDays: 30})
	ctx := context.Background()

	testutil.CreateAccount(t, db, "alice", "correct-horse", domain.RoleAgent)
	resp, err := svc.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))

	// The token is invalid immediately, not at expiry
	_, err = svc.ResolveToken(ctx, resp.Token)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
