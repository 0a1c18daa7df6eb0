package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
)

// ContactFilters holds the optional criteria for contact listings. Zero
// values mean "no constraint". LastCall is checked in memory against the
// correlated last-call column after the fetch.
type ContactFilters struct {
	Name            string
	FirstName       string
	LastName        string
	Phone           string
	Role            string
	Domain          string
	Province        string
	Statuses        []domain.ContactStatus
	Levels          []domain.Level
	CompanyIDs      []uint
	Created         DateRange
	HasOpenFollowUp *bool
	LastCall        DateRange
	Scope           OwnerScope
}

// ContactReportRow is a contact listing row with the derived columns the
// report query materializes. Timestamp-ish derived columns are scanned as
// strings because correlated subquery columns carry no declared type.
type ContactReportRow struct {
	ID              uint      `gorm:"column:id"`
	FirstName       string    `gorm:"column:first_name"`
	LastName        string    `gorm:"column:last_name"`
	FullName        string    `gorm:"column:full_name"`
	Phone           string    `gorm:"column:phone"`
	Role            string    `gorm:"column:role"`
	CompanyID       *uint     `gorm:"column:company_id"`
	CompanyName     string    `gorm:"column:company_name"`
	Note            string    `gorm:"column:note"`
	Status          string    `gorm:"column:status"`
	Domain          string    `gorm:"column:domain"`
	Province        string    `gorm:"column:province"`
	Level           string    `gorm:"column:level"`
	OwnerID         *uint     `gorm:"column:owner_id"`
	OwnerName       string    `gorm:"column:owner_name"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
	LastCallAt      string    `gorm:"column:last_call_at"`
	LastCallStatus  string    `gorm:"column:last_call_status"`
	HasOpenFollowUp bool      `gorm:"column:has_open_followup"`
	OpenFollowUpDue string    `gorm:"column:open_followup_due"`
}

const contactReportSelect = `u.id, u.first_name, u.last_name, u.full_name, u.phone, u.role,
u.company_id, u.note, u.status, u.domain, u.province, u.level, u.owner_id,
u.created_at, u.updated_at,
COALESCE(c.name, '') AS company_name,
COALESCE(a.username, '') AS owner_name,
COALESCE((SELECT cl.called_at FROM calls cl WHERE cl.contact_id = u.id ORDER BY cl.called_at DESC, cl.id DESC LIMIT 1), '') AS last_call_at,
COALESCE((SELECT cl.status FROM calls cl WHERE cl.contact_id = u.id ORDER BY cl.called_at DESC, cl.id DESC LIMIT 1), '') AS last_call_status,
EXISTS(SELECT 1 FROM followups f WHERE f.contact_id = u.id AND f.status = 'in_progress') AS has_open_followup,
COALESCE((SELECT MAX(f.due_at) FROM followups f WHERE f.contact_id = u.id AND f.status = 'in_progress'), '') AS open_followup_due`

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) GetByID(ctx context.Context, id uint) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).
		Preload("Company").
		Preload("Owner").
		First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListWithFilters runs the ownership-scoped report query. The enforced
// owner predicate in filters.Scope is ANDed regardless of any other
// criterion; the last-call range is applied in memory afterwards.
func (r *ContactRepository) ListWithFilters(ctx context.Context, filters ContactFilters) ([]ContactReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("contacts AS u").
		Select(contactReportSelect).
		Joins("LEFT JOIN companies c ON c.id = u.company_id").
		Joins("LEFT JOIN accounts a ON a.id = u.owner_id")

	query = filters.Scope.Apply(query, "u.owner_id")

	if filters.Name != "" {
		query = query.Where("u.full_name LIKE ?", "%"+filters.Name+"%")
	}
	if filters.FirstName != "" {
		query = query.Where("u.first_name LIKE ?", "%"+filters.FirstName+"%")
	}
	if filters.LastName != "" {
		query = query.Where("u.last_name LIKE ?", "%"+filters.LastName+"%")
	}
	if filters.Phone != "" {
		query = query.Where("u.phone LIKE ?", "%"+filters.Phone+"%")
	}
	if filters.Role != "" {
		query = query.Where("u.role LIKE ?", "%"+filters.Role+"%")
	}
	if filters.Domain != "" {
		query = query.Where("u.domain LIKE ?", "%"+filters.Domain+"%")
	}
	if filters.Province != "" {
		query = query.Where("u.province LIKE ?", "%"+filters.Province+"%")
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("u.status IN ?", filters.Statuses)
	}
	if len(filters.Levels) > 0 {
		query = query.Where("u.level IN ?", filters.Levels)
	}
	if len(filters.CompanyIDs) > 0 {
		query = query.Where("u.company_id IN ?", filters.CompanyIDs)
	}
	query = filters.Created.Apply(query, "u.created_at")
	if filters.HasOpenFollowUp != nil {
		if *filters.HasOpenFollowUp {
			query = query.Where("EXISTS(SELECT 1 FROM followups f WHERE f.contact_id = u.id AND f.status = 'in_progress')")
		} else {
			query = query.Where("NOT EXISTS(SELECT 1 FROM followups f WHERE f.contact_id = u.id AND f.status = 'in_progress')")
		}
	}

	var rows []ContactReportRow
	if err := query.Order("u.created_at DESC, u.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	if filters.LastCall.IsZero() {
		return rows, nil
	}
	filtered := make([]ContactReportRow, 0, len(rows))
	for _, row := range rows {
		if MatchesStoredRange(row.LastCallAt, filters.LastCall) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// GetReportByID returns a single contact shaped like a listing row,
// honoring the given ownership scope.
func (r *ContactRepository) GetReportByID(ctx context.Context, id uint, scope OwnerScope) (*ContactReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("contacts AS u").
		Select(contactReportSelect).
		Joins("LEFT JOIN companies c ON c.id = u.company_id").
		Joins("LEFT JOIN accounts a ON a.id = u.owner_id").
		Where("u.id = ?", id)
	query = scope.Apply(query, "u.owner_id")

	var rows []ContactReportRow
	if err := query.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// UpdateFields applies a partial patch. The caller builds the map from
// explicitly supplied fields only; an empty map is a no-op.
func (r *ContactRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *ContactRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Contact{}, "id = ?", id).Error
}

// PhoneExists checks phone uniqueness with an exact match, optionally
// excluding one contact (for updates).
func (r *ContactRepository) PhoneExists(ctx context.Context, phone string, excludeID *uint) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("phone = ?", phone)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// BulkReassignOwner moves the listed contacts to a new owner (nil means
// unassign). A restricted scope silently narrows the update to contacts
// the caller currently owns. Returns the number of rows actually changed.
func (r *ContactRepository) BulkReassignOwner(ctx context.Context, ids []uint, newOwnerID *uint, scope OwnerScope) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("id IN ?", ids)
	if scope.EnforcedOwnerID != nil {
		query = query.Where("owner_id = ?", *scope.EnforcedOwnerID)
	}
	result := query.Update("owner_id", newOwnerID)
	return result.RowsAffected, result.Error
}

// ListByCompany returns a company's contacts with owner names attached,
// used for profile pages and colleague lists.
func (r *ContactRepository) ListByCompany(ctx context.Context, companyID uint) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Preload("Company").
		Preload("Owner").
		Where("company_id = ?", companyID).
		Order("full_name COLLATE NOCASE ASC").
		Find(&contacts).Error
	return contacts, err
}

// ListOptions returns the scoped id/name pairs for contact pickers
func (r *ContactRepository) ListOptions(ctx context.Context, scope OwnerScope) ([]domain.ContactOptionDTO, error) {
	query := r.db.WithContext(ctx).
		Table("contacts AS u").
		Select("u.id, u.full_name, COALESCE(c.name, '') AS company_name").
		Joins("LEFT JOIN companies c ON c.id = u.company_id")
	query = scope.Apply(query, "u.owner_id")

	var options []domain.ContactOptionDTO
	err := query.Order("u.full_name COLLATE NOCASE ASC").Scan(&options).Error
	return options, err
}

func (r *ContactRepository) Count(ctx context.Context, scope OwnerScope) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Contact{})
	query = scope.Apply(query, "owner_id")
	err := query.Count(&count).Error
	return count, err
}
