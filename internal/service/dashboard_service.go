package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
)

// DashboardService aggregates the counters shown on the landing page.
// Call and follow-up counters respect the caller's ownership scope; the
// company total is global.
type DashboardService struct {
	contactRepo  *repository.ContactRepository
	companyRepo  *repository.CompanyRepository
	callRepo     *repository.CallRepository
	followUpRepo *repository.FollowUpRepository
	logger       *zap.Logger
}

func NewDashboardService(
	contactRepo *repository.ContactRepository,
	companyRepo *repository.CompanyRepository,
	callRepo *repository.CallRepository,
	followUpRepo *repository.FollowUpRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		contactRepo:  contactRepo,
		companyRepo:  companyRepo,
		callRepo:     callRepo,
		followUpRepo: followUpRepo,
		logger:       logger,
	}
}

func (s *DashboardService) Metrics(ctx context.Context, caller *auth.Caller) (*domain.DashboardMetricsDTO, error) {
	scope := repository.ResolveOwnerScope(caller, nil)

	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := startOfDay.AddDate(0, 0, -6)

	callsToday, err := s.callRepo.CountSince(ctx, scope, startOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's calls: %w", err)
	}
	successfulToday, err := s.callRepo.CountSinceWithStatus(ctx, scope, startOfDay, domain.CallStatusSuccessful)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's successful calls: %w", err)
	}
	callsWeek, err := s.callRepo.CountSince(ctx, scope, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count this week's calls: %w", err)
	}
	overdue, err := s.followUpRepo.CountOpenDueBy(ctx, scope, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue follow-ups: %w", err)
	}
	companies, err := s.companyRepo.Count(ctx, repository.OwnerScope{})
	if err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	contacts, err := s.contactRepo.Count(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	return &domain.DashboardMetricsDTO{
		CallsToday:           callsToday,
		SuccessfulCallsToday: successfulToday,
		CallsLast7Days:       callsWeek,
		OverdueFollowUps:     overdue,
		TotalCompanies:       companies,
		TotalContacts:        contacts,
	}, nil
}
