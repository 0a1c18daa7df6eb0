package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
	"github.com/fardapack/crm-api/internal/service"
	"github.com/fardapack/crm-api/internal/testutil"
)

func newAccountService(db *gorm.DB) *service.AccountService {
	cfg := &config.AuthConfig{
		BcryptCost:        bcrypt.MinCost,
		MinPasswordLength: 6,
	}
	return service.NewAccountService(repository.NewAccountRepository(db), cfg, zap.NewNop())
}

func TestAccountService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAccountService(db)
	ctx := context.Background()

	t.Run("defaults to agent role", func(t *testing.T) {
		dto, err := svc.Create(ctx, &domain.CreateAccountRequest{
			Username: "alice",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAgent, dto.Role)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateAccountRequest{
			Username: "alice",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, service.ErrDuplicateUsername)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateAccountRequest{
			Username: "bob",
			Password: "short",
		})
		assert.ErrorIs(t, err, service.ErrPasswordTooShort)
	})

	t.Run("blank username rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateAccountRequest{
			Username: "   ",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, service.ErrNameRequired)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateAccountRequest{
			Username: "carol",
			Password: "secret123",
			Role:     "owner",
		})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})
}

func TestAccountService_ChangePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAccountService(db)
	ctx := context.Background()

	account := testutil.CreateAccount(t, db, "alice", "original1", domain.RoleAgent)

	t.Run("hash is replaced", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, account.ID, &domain.ChangePasswordRequest{
			Password: "brand-new-pass",
		}))

		var reloaded domain.Account
		require.NoError(t, db.First(&reloaded, account.ID).Error)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reloaded.PasswordHash), []byte("brand-new-pass")))
	})

	t.Run("short password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, account.ID, &domain.ChangePasswordRequest{Password: "tiny"})
		assert.ErrorIs(t, err, service.ErrPasswordTooShort)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := svc.ChangePassword(ctx, 99999, &domain.ChangePasswordRequest{Password: "long-enough"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestAccountService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAccountService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret123", domain.RoleAdmin)
	victim := testutil.CreateAccount(t, db, "victim", "secret123", domain.RoleAgent)
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", victim, nil)
	session := &domain.Session{Token: "victimtoken", AccountID: victim.ID}
	require.NoError(t, db.Create(session).Error)

	t.Run("self delete rejected", func(t *testing.T) {
		err := svc.Delete(ctx, testutil.CallerFor(admin), admin.ID)
		assert.ErrorIs(t, err, service.ErrSelfDelete)
	})

	t.Run("delete detaches contacts and drops sessions", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, testutil.CallerFor(admin), victim.ID))

		var reloaded domain.Contact
		require.NoError(t, db.First(&reloaded, contact.ID).Error)
		assert.Nil(t, reloaded.OwnerID)

		err := db.First(&domain.Session{}, "token = ?", "victimtoken").Error
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
