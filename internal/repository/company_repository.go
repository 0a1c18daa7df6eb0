package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/domain"
)

// CompanyFilters holds the optional criteria for company listings
type CompanyFilters struct {
	Name            string
	Phone           string
	Address         string
	Statuses        []domain.CompanyStatus
	Levels          []domain.Level
	Created         DateRange
	HasOpenFollowUp *bool
	Scope           OwnerScope
}

// CompanyReportRow is a company listing row with the derived columns
type CompanyReportRow struct {
	ID              uint      `gorm:"column:id"`
	Name            string    `gorm:"column:name"`
	Phone           string    `gorm:"column:phone"`
	Address         string    `gorm:"column:address"`
	Note            string    `gorm:"column:note"`
	Level           string    `gorm:"column:level"`
	Status          string    `gorm:"column:status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
	ContactCount    int       `gorm:"column:contact_count"`
	AgentUsernames  string    `gorm:"column:agent_usernames"`
	HasOpenFollowUp bool      `gorm:"column:has_open_followup"`
	OpenFollowUpDue string    `gorm:"column:open_followup_due"`
}

const companyReportSelect = `c.id, c.name, c.phone, c.address, c.note, c.level, c.status,
c.created_at, c.updated_at,
(SELECT COUNT(*) FROM contacts u WHERE u.company_id = c.id) AS contact_count,
COALESCE((SELECT GROUP_CONCAT(DISTINCT a.username) FROM contacts u JOIN accounts a ON a.id = u.owner_id WHERE u.company_id = c.id), '') AS agent_usernames,
EXISTS(SELECT 1 FROM followups f JOIN contacts u ON u.id = f.contact_id WHERE u.company_id = c.id AND f.status = 'in_progress') AS has_open_followup,
COALESCE((SELECT MAX(f.due_at) FROM followups f JOIN contacts u ON u.id = f.contact_id WHERE u.company_id = c.id AND f.status = 'in_progress'), '') AS open_followup_due`

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uint) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByName looks a company up by exact trimmed name
func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).First(&company, "name = ?", strings.TrimSpace(name)).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// ListWithFilters runs the scoped company report query. A restricted
// scope only shows companies with at least one contact owned by the
// caller; an admin owner-filter narrows the same way, permissively.
func (r *CompanyRepository) ListWithFilters(ctx context.Context, filters CompanyFilters) ([]CompanyReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("companies AS c").
		Select(companyReportSelect)

	query = applyCompanyScope(query, filters.Scope)

	if filters.Name != "" {
		query = query.Where("c.name LIKE ?", "%"+filters.Name+"%")
	}
	if filters.Phone != "" {
		query = query.Where("c.phone LIKE ?", "%"+filters.Phone+"%")
	}
	if filters.Address != "" {
		query = query.Where("c.address LIKE ?", "%"+filters.Address+"%")
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("c.status IN ?", filters.Statuses)
	}
	if len(filters.Levels) > 0 {
		query = query.Where("c.level IN ?", filters.Levels)
	}
	query = filters.Created.Apply(query, "c.created_at")
	if filters.HasOpenFollowUp != nil {
		existsClause := "EXISTS(SELECT 1 FROM followups f JOIN contacts u ON u.id = f.contact_id WHERE u.company_id = c.id AND f.status = 'in_progress')"
		if *filters.HasOpenFollowUp {
			query = query.Where(existsClause)
		} else {
			query = query.Where("NOT " + existsClause)
		}
	}

	var rows []CompanyReportRow
	err := query.Order("c.created_at DESC, c.id DESC").Scan(&rows).Error
	return rows, err
}

// GetReportByID returns a single company shaped like a listing row,
// honoring the given ownership scope.
func (r *CompanyRepository) GetReportByID(ctx context.Context, id uint, scope OwnerScope) (*CompanyReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("companies AS c").
		Select(companyReportSelect).
		Where("c.id = ?", id)
	query = applyCompanyScope(query, scope)

	var rows []CompanyReportRow
	if err := query.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// UpdateFields applies a partial patch; an empty map is a no-op
func (r *CompanyRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Company{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes a company. Referencing contacts keep existing but lose
// their company reference via the schema's ON DELETE SET NULL.
func (r *CompanyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Company{}, "id = ?", id).Error
}

// ListOptions returns all companies as select-list entries, name ascending
func (r *CompanyRepository) ListOptions(ctx context.Context) ([]domain.CompanyOptionDTO, error) {
	var options []domain.CompanyOptionDTO
	err := r.db.WithContext(ctx).
		Model(&domain.Company{}).
		Select("id, name").
		Order("name ASC").
		Scan(&options).Error
	return options, err
}

func (r *CompanyRepository) Count(ctx context.Context, scope OwnerScope) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Table("companies AS c")
	query = applyCompanyScope(query, scope)
	err := query.Count(&count).Error
	return count, err
}

// applyCompanyScope restricts companies to those reachable through an
// owned contact. Companies have no owner column of their own.
func applyCompanyScope(query *gorm.DB, scope OwnerScope) *gorm.DB {
	if scope.EnforcedOwnerID != nil {
		return query.Where("EXISTS(SELECT 1 FROM contacts u WHERE u.company_id = c.id AND u.owner_id = ?)", *scope.EnforcedOwnerID)
	}
	if len(scope.OwnerIDs) > 0 {
		return query.Where("EXISTS(SELECT 1 FROM contacts u WHERE u.company_id = c.id AND u.owner_id IN ?)", scope.OwnerIDs)
	}
	return query
}
