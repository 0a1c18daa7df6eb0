package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
)

// FollowUpFilters holds the optional criteria for follow-up listings.
// Name matches the contact full name or the company name.
type FollowUpFilters struct {
	Name     string
	Statuses []domain.FollowUpStatus
	Due      DateRange
	LastCall DateRange
	Scope    OwnerScope
}

// FollowUpReportRow is a follow-up listing row with contact context attached
type FollowUpReportRow struct {
	ID          uint      `gorm:"column:id"`
	ContactID   uint      `gorm:"column:contact_id"`
	ContactName string    `gorm:"column:contact_name"`
	CompanyName string    `gorm:"column:company_name"`
	OwnerName   string    `gorm:"column:owner_name"`
	Title       string    `gorm:"column:title"`
	Details     string    `gorm:"column:details"`
	DueAt       time.Time `gorm:"column:due_at"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	LastCallAt  string    `gorm:"column:last_call_at"`
}

const followUpReportSelect = `f.id, f.contact_id, f.title, f.details, f.due_at, f.status, f.created_at, f.updated_at,
COALESCE(u.full_name, '') AS contact_name,
COALESCE(c.name, '') AS company_name,
COALESCE(a.username, '') AS owner_name,
COALESCE((SELECT cl.called_at FROM calls cl WHERE cl.contact_id = u.id ORDER BY cl.called_at DESC, cl.id DESC LIMIT 1), '') AS last_call_at`

type FollowUpRepository struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

func (r *FollowUpRepository) Create(ctx context.Context, followUp *domain.FollowUp) error {
	return r.db.WithContext(ctx).Create(followUp).Error
}

func (r *FollowUpRepository) GetByID(ctx context.Context, id uint) (*domain.FollowUp, error) {
	var followUp domain.FollowUp
	err := r.db.WithContext(ctx).Preload("Contact").First(&followUp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &followUp, nil
}

// ListWithFilters runs the scoped follow-up report query, ordered by due
// time descending.
func (r *FollowUpRepository) ListWithFilters(ctx context.Context, filters FollowUpFilters) ([]FollowUpReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("followups AS f").
		Select(followUpReportSelect).
		Joins("JOIN contacts u ON u.id = f.contact_id").
		Joins("LEFT JOIN companies c ON c.id = u.company_id").
		Joins("LEFT JOIN accounts a ON a.id = u.owner_id")

	query = filters.Scope.Apply(query, "u.owner_id")

	if filters.Name != "" {
		pattern := "%" + filters.Name + "%"
		query = query.Where("(u.full_name LIKE ? OR c.name LIKE ?)", pattern, pattern)
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("f.status IN ?", filters.Statuses)
	}
	query = filters.Due.Apply(query, "f.due_at")

	var rows []FollowUpReportRow
	if err := query.Order("f.due_at DESC, f.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	if filters.LastCall.IsZero() {
		return rows, nil
	}
	filtered := make([]FollowUpReportRow, 0, len(rows))
	for _, row := range rows {
		if MatchesStoredRange(row.LastCallAt, filters.LastCall) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// UpdateStatus transitions a follow-up between the two closed states.
// Status validity is checked by the service before this runs.
func (r *FollowUpRepository) UpdateStatus(ctx context.Context, id uint, status domain.FollowUpStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.FollowUp{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateFields applies a partial patch; an empty map is a no-op
func (r *FollowUpRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.FollowUp{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ListByContact returns a contact's follow-ups, latest due first
func (r *FollowUpRepository) ListByContact(ctx context.Context, contactID uint) ([]domain.FollowUp, error) {
	var followUps []domain.FollowUp
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("due_at DESC, id DESC").
		Find(&followUps).Error
	return followUps, err
}

// ListByCompany returns the follow-ups of every contact in a company,
// latest due first, with contact names attached.
func (r *FollowUpRepository) ListByCompany(ctx context.Context, companyID uint) ([]FollowUpReportRow, error) {
	var rows []FollowUpReportRow
	err := r.db.WithContext(ctx).
		Table("followups AS f").
		Select(followUpReportSelect).
		Joins("JOIN contacts u ON u.id = f.contact_id").
		Joins("LEFT JOIN companies c ON c.id = u.company_id").
		Joins("LEFT JOIN accounts a ON a.id = u.owner_id").
		Where("u.company_id = ?", companyID).
		Order("f.due_at DESC, f.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *FollowUpRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.FollowUp{}, "id = ?", id).Error
}

// ContactOwnerID returns the owner of a follow-up's contact, for scoping
// single-row access.
func (r *FollowUpRepository) ContactOwnerID(ctx context.Context, followUpID uint) (*uint, error) {
	var row struct {
		OwnerID *uint `gorm:"column:owner_id"`
	}
	err := r.db.WithContext(ctx).
		Table("followups AS f").
		Select("u.owner_id").
		Joins("JOIN contacts u ON u.id = f.contact_id").
		Where("f.id = ?", followUpID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.OwnerID, nil
}

// CountOpenDueBy counts scoped open follow-ups due at or before the cutoff
func (r *FollowUpRepository) CountOpenDueBy(ctx context.Context, scope OwnerScope, cutoff time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Table("followups AS f").
		Joins("JOIN contacts u ON u.id = f.contact_id").
		Where("f.status = ?", domain.FollowUpStatusInProgress).
		Where("f.due_at <= ?", cutoff)
	query = scope.Apply(query, "u.owner_id")
	err := query.Count(&count).Error
	return count, err
}
