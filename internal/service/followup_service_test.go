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

func newFollowUpService(db *gorm.DB) *service.FollowUpService {
	return service.NewFollowUpService(
		repository.NewFollowUpRepository(db),
		repository.NewContactRepository(db),
		zap.NewNop(),
	)
}

func TestFollowUpService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newFollowUpService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, nil)
	due := time.Now().UTC().Add(48 * time.Hour)

	t.Run("defaults to in_progress", func(t *testing.T) {
		dto, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateFollowUpRequest{
			ContactID: contact.ID,
			Title:     "send samples",
			DueAt:     due,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.FollowUpStatusInProgress, dto.Status)
		assert.Equal(t, "Ada Lovelace", dto.ContactName)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateFollowUpRequest{
			ContactID: contact.ID,
			DueAt:     due,
			Status:    "someday",
		})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("unknown contact reads as not found", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.CallerFor(admin), &domain.CreateFollowUpRequest{
			ContactID: 99999,
			DueAt:     due,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestFollowUpService_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newFollowUpService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", nil, nil)
	followUp := testutil.CreateFollowUp(t, db, contact, time.Now().UTC().Add(24*time.Hour), domain.FollowUpStatusInProgress)

	t.Run("valid transition", func(t *testing.T) {
		dto, err := svc.UpdateStatus(ctx, testutil.CallerFor(admin), followUp.ID, &domain.UpdateFollowUpStatusRequest{
			Status: string(domain.FollowUpStatusDone),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.FollowUpStatusDone, dto.Status)
	})

	t.Run("invalid value rejected before any write", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, testutil.CallerFor(admin), followUp.ID, &domain.UpdateFollowUpStatusRequest{
			Status: "archived",
		})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)

		var stored domain.FollowUp
		require.NoError(t, db.First(&stored, followUp.ID).Error)
		assert.Equal(t, domain.FollowUpStatusDone, stored.Status, "stored status must be unchanged")
	})
}

func TestFollowUpService_OwnershipViaContact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newFollowUpService(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice", "secret1", domain.RoleAgent)
	bob := testutil.CreateAccount(t, db, "bob", "secret1", domain.RoleAgent)
	contact := testutil.CreateContact(t, db, "Ada", "Lovelace", alice, nil)
	followUp := testutil.CreateFollowUp(t, db, contact, time.Now().UTC().Add(24*time.Hour), domain.FollowUpStatusInProgress)

	t.Run("other agents cannot create against the contact", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.CallerFor(bob), &domain.CreateFollowUpRequest{
			ContactID: contact.ID,
			DueAt:     time.Now().UTC(),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("other agents cannot delete", func(t *testing.T) {
		err := svc.Delete(ctx, testutil.CallerFor(bob), followUp.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("owner can patch", func(t *testing.T) {
		title := "revised"
		dto, err := svc.Update(ctx, testutil.CallerFor(alice), followUp.ID, &domain.UpdateFollowUpRequest{
			Title: &title,
		})
		require.NoError(t, err)
		assert.Equal(t, "revised", dto.Title)
	})

	t.Run("owner can delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, testutil.CallerFor(alice), followUp.ID))
		err := db.First(&domain.FollowUp{}, followUp.ID).Error
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestFollowUpService_List_Scope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newFollowUpService(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice", "secret1", domain.RoleAgent)
	bob := testutil.CreateAccount(t, db, "bob", "secret1", domain.RoleAgent)
	mine := testutil.CreateContact(t, db, "Mine", "One", alice, nil)
	theirs := testutil.CreateContact(t, db, "Theirs", "Two", bob, nil)

	due := time.Now().UTC().Add(24 * time.Hour)
	testutil.CreateFollowUp(t, db, mine, due, domain.FollowUpStatusInProgress)
	testutil.CreateFollowUp(t, db, theirs, due, domain.FollowUpStatusInProgress)

	dtos, err := svc.List(ctx, testutil.CallerFor(alice), repository.FollowUpFilters{}, nil)
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, mine.ID, dtos[0].ContactID)
}
