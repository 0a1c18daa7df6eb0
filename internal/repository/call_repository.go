package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
)

// CallFilters holds the optional criteria for call listings. The scope
// applies to the owner of the call's contact. Name matches the contact
// full name or the company name.
type CallFilters struct {
	Name            string
	Statuses        []domain.CallStatus
	Called          DateRange
	HasOpenFollowUp *bool
	LastCall        DateRange
	Scope           OwnerScope
}

// CallReportRow is a call listing row with contact context attached
type CallReportRow struct {
	ID              uint      `gorm:"column:id"`
	ContactID       uint      `gorm:"column:contact_id"`
	ContactName     string    `gorm:"column:contact_name"`
	CompanyName     string    `gorm:"column:company_name"`
	OwnerName       string    `gorm:"column:owner_name"`
	CalledAt        time.Time `gorm:"column:called_at"`
	Status          string    `gorm:"column:status"`
	Description     string    `gorm:"column:description"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	HasOpenFollowUp bool      `gorm:"column:has_open_followup"`
	LastCallAt      string    `gorm:"column:last_call_at"`
}

const callReportSelect = `cl.id, cl.contact_id, cl.called_at, cl.status, cl.description, cl.created_at,
COALESCE(u.full_name, '') AS contact_name,
COALESCE(c.name, '') AS company_name,
COALESCE(a.username, '') AS owner_name,
EXISTS(SELECT 1 FROM followups f WHERE f.contact_id = u.id AND f.status = 'in_progress') AS has_open_followup,
COALESCE((SELECT c2.called_at FROM calls c2 WHERE c2.contact_id = u.id ORDER BY c2.called_at DESC, c2.id DESC LIMIT 1), '') AS last_call_at`

type CallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) Create(ctx context.Context, call *domain.Call) error {
	return r.db.WithContext(ctx).Create(call).Error
}

// ListWithFilters runs the scoped call report query, ordered by call
// time descending. The last-call range is checked in memory against the
// contact's correlated most-recent-call column.
func (r *CallRepository) ListWithFilters(ctx context.Context, filters CallFilters) ([]CallReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("calls AS cl").
		Select(callReportSelect).
		Joins("JOIN contacts u ON u.id = cl.contact_id").
		Joins("LEFT JOIN companies c ON c.id = u.company_id").
		Joins("LEFT JOIN accounts a ON a.id = u.owner_id")

	query = filters.Scope.Apply(query, "u.owner_id")

	if filters.Name != "" {
		pattern := "%" + filters.Name + "%"
		query = query.Where("(u.full_name LIKE ? OR c.name LIKE ?)", pattern, pattern)
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("cl.status IN ?", filters.Statuses)
	}
	query = filters.Called.Apply(query, "cl.called_at")
	if filters.HasOpenFollowUp != nil {
		existsClause := "EXISTS(SELECT 1 FROM followups f WHERE f.contact_id = u.id AND f.status = 'in_progress')"
		if *filters.HasOpenFollowUp {
			query = query.Where(existsClause)
		} else {
			query = query.Where("NOT " + existsClause)
		}
	}

	var rows []CallReportRow
	if err := query.Order("cl.called_at DESC, cl.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	if filters.LastCall.IsZero() {
		return rows, nil
	}
	filtered := make([]CallReportRow, 0, len(rows))
	for _, row := range rows {
		if MatchesStoredRange(row.LastCallAt, filters.LastCall) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// ListByContact returns a contact's calls, most recent first
func (r *CallRepository) ListByContact(ctx context.Context, contactID uint) ([]domain.Call, error) {
	var calls []domain.Call
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("called_at DESC, id DESC").
		Find(&calls).Error
	return calls, err
}

// ListByCompany returns the calls of every contact in a company, most
// recent first, with contact names attached.
func (r *CallRepository) ListByCompany(ctx context.Context, companyID uint) ([]CallReportRow, error) {
	var rows []CallReportRow
	err := r.db.WithContext(ctx).
		Table("calls AS cl").
		Select(callReportSelect).
		Joins("JOIN contacts u ON u.id = cl.contact_id").
		Joins("LEFT JOIN companies c ON c.id = u.company_id").
		Joins("LEFT JOIN accounts a ON a.id = u.owner_id").
		Where("u.company_id = ?", companyID).
		Order("cl.called_at DESC, cl.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *CallRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Call{}, "id = ?", id).Error
}

// ContactOwnerID returns the owner of a call's contact, for scoping
// single-row access.
func (r *CallRepository) ContactOwnerID(ctx context.Context, callID uint) (*uint, error) {
	var row struct {
		OwnerID *uint `gorm:"column:owner_id"`
	}
	err := r.db.WithContext(ctx).
		Table("calls AS cl").
		Select("u.owner_id").
		Joins("JOIN contacts u ON u.id = cl.contact_id").
		Where("cl.id = ?", callID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.OwnerID, nil
}

// CountSince counts scoped calls with a call time at or after the cutoff
func (r *CallRepository) CountSince(ctx context.Context, scope OwnerScope, cutoff time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Table("calls AS cl").
		Joins("JOIN contacts u ON u.id = cl.contact_id").
		Where("cl.called_at >= ?", cutoff)
	query = scope.Apply(query, "u.owner_id")
	err := query.Count(&count).Error
	return count, err
}

// CountSinceWithStatus is CountSince restricted to a single call status
func (r *CallRepository) CountSinceWithStatus(ctx context.Context, scope OwnerScope, cutoff time.Time, status domain.CallStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Table("calls AS cl").
		Joins("JOIN contacts u ON u.id = cl.contact_id").
		Where("cl.called_at >= ?", cutoff).
		Where("cl.status = ?", status)
	query = scope.Apply(query, "u.owner_id")
	err := query.Count(&count).Error
	return count, err
}
