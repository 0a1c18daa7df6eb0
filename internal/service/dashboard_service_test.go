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

func newDashboardService(db *gorm.DB) *service.DashboardService {
	return service.NewDashboardService(
		repository.NewContactRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewCallRepository(db),
		repository.NewFollowUpRepository(db),
		zap.NewNop(),
	)
}

func TestDashboardService_Metrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDashboardService(db)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", "secret1", domain.RoleAdmin)
	agent := testutil.CreateAccount(t, db, "agent", "secret1", domain.RoleAgent)

	testutil.CreateCompany(t, db, "Acme")
	testutil.CreateCompany(t, db, "Globex")

	mine := testutil.CreateContact(t, db, "Mine", "One", agent, nil)
	other := testutil.CreateContact(t, db, "Other", "Two", admin, nil)

	now := time.Now().UTC()
	testutil.CreateCall(t, db, mine, now.Add(-time.Minute), domain.CallStatusSuccessful)
	testutil.CreateCall(t, db, mine, now.Add(-2*time.Minute), domain.CallStatusFailed)
	testutil.CreateCall(t, db, other, now.Add(-3*time.Minute), domain.CallStatusSuccessful)

	// Overdue for the agent, plus one future follow-up that should not count
	testutil.CreateFollowUp(t, db, mine, now.Add(-24*time.Hour), domain.FollowUpStatusInProgress)
	testutil.CreateFollowUp(t, db, mine, now.Add(24*time.Hour), domain.FollowUpStatusInProgress)
	// Done follow-ups never count as overdue
	testutil.CreateFollowUp(t, db, mine, now.Add(-48*time.Hour), domain.FollowUpStatusDone)

	t.Run("admin sees everything", func(t *testing.T) {
		metrics, err := svc.Metrics(ctx, testutil.CallerFor(admin))
		require.NoError(t, err)
		assert.Equal(t, int64(3), metrics.CallsToday)
		assert.Equal(t, int64(2), metrics.SuccessfulCallsToday)
		assert.Equal(t, int64(3), metrics.CallsLast7Days)
		assert.Equal(t, int64(1), metrics.OverdueFollowUps)
		assert.Equal(t, int64(2), metrics.TotalCompanies)
		assert.Equal(t, int64(2), metrics.TotalContacts)
	})

	t.Run("agent counts are owner scoped except companies", func(t *testing.T) {
		metrics, err := svc.Metrics(ctx, testutil.CallerFor(agent))
		require.NoError(t, err)
		assert.Equal(t, int64(2), metrics.CallsToday)
		assert.Equal(t, int64(1), metrics.SuccessfulCallsToday)
		assert.Equal(t, int64(1), metrics.OverdueFollowUps)
		assert.Equal(t, int64(1), metrics.TotalContacts)
		// The company total stays global
		assert.Equal(t, int64(2), metrics.TotalCompanies)
	})
}
