package domain

import (
	"strings"
	"time"
)

// BaseModel holds the common identity and timestamp fields
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Level represents the commercial importance of a company or contact
type Level string

const (
	LevelNone   Level = "none"
	LevelGold   Level = "gold"
	LevelSilver Level = "silver"
	LevelBronze Level = "bronze"
)

// IsValid checks if the Level is a valid enum value
func (l Level) IsValid() bool {
	switch l {
	case LevelNone, LevelGold, LevelSilver, LevelBronze:
		return true
	}
	return false
}

// CompanyStatus represents where a company sits in the sales funnel
type CompanyStatus string

const (
	CompanyStatusNone     CompanyStatus = "none"
	CompanyStatusPursuing CompanyStatus = "pursuing"
	CompanyStatusQuoted   CompanyStatus = "quoted"
	CompanyStatusCustomer CompanyStatus = "customer"
)

// IsValid checks if the CompanyStatus is a valid enum value
func (s CompanyStatus) IsValid() bool {
	switch s {
	case CompanyStatusNone, CompanyStatusPursuing, CompanyStatusQuoted, CompanyStatusCustomer:
		return true
	}
	return false
}

// ContactStatus represents where a contact sits in the sales funnel
type ContactStatus string

const (
	ContactStatusNone      ContactStatus = "none"
	ContactStatusPursuing  ContactStatus = "pursuing"
	ContactStatusQuoted    ContactStatus = "quoted"
	ContactStatusCustomer  ContactStatus = "customer"
	ContactStatusCancelled ContactStatus = "cancelled"
)

// IsValid checks if the ContactStatus is a valid enum value
func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusNone, ContactStatusPursuing, ContactStatusQuoted, ContactStatusCustomer, ContactStatusCancelled:
		return true
	}
	return false
}

// CallStatus represents the outcome of a logged call. Closed set,
// backed by a CHECK constraint in the schema.
type CallStatus string

const (
	CallStatusFailed     CallStatus = "failed"
	CallStatusSuccessful CallStatus = "successful"
	CallStatusOff        CallStatus = "off"
	CallStatusRejected   CallStatus = "rejected"
)

// IsValid checks if the CallStatus is a valid enum value
func (s CallStatus) IsValid() bool {
	switch s {
	case CallStatusFailed, CallStatusSuccessful, CallStatusOff, CallStatusRejected:
		return true
	}
	return false
}

// FollowUpStatus represents whether a follow-up task is still open
type FollowUpStatus string

const (
	FollowUpStatusInProgress FollowUpStatus = "in_progress"
	FollowUpStatusDone       FollowUpStatus = "done"
)

// IsValid checks if the FollowUpStatus is a valid enum value
func (s FollowUpStatus) IsValid() bool {
	switch s {
	case FollowUpStatusInProgress, FollowUpStatusDone:
		return true
	}
	return false
}

// OrderStatus represents the state of an order
type OrderStatus string

const (
	OrderStatusPursuing  OrderStatus = "pursuing"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// IsValid checks if the OrderStatus is a valid enum value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPursuing, OrderStatusApproved, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// Role represents the privilege level of an application account
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// IsValid checks if the Role is a valid enum value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAgent:
		return true
	}
	return false
}

// Company represents an organization contacts belong to
type Company struct {
	BaseModel
	Name      string        `gorm:"type:varchar(200);not null;index"`
	Phone     string        `gorm:"type:varchar(50)"`
	Address   string        `gorm:"type:varchar(500)"`
	Note      string        `gorm:"type:text"`
	Level     Level         `gorm:"type:varchar(20);not null;default:'none';index"`
	Status    CompanyStatus `gorm:"type:varchar(20);not null;default:'none';index"`
	CreatedBy *uint         `gorm:"column:created_by"`
	Contacts  []Contact     `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
}

// Contact represents an individual lead or customer record. OwnerID is
// the authorization anchor: non-admin callers only ever see contacts
// whose owner is their own account.
type Contact struct {
	BaseModel
	FirstName string        `gorm:"type:varchar(100);not null;column:first_name"`
	LastName  string        `gorm:"type:varchar(100);column:last_name"`
	FullName  string        `gorm:"type:varchar(200);not null;column:full_name;index"`
	Phone     string        `gorm:"type:varchar(50);index"`
	Role      string        `gorm:"type:varchar(100)"`
	CompanyID *uint         `gorm:"column:company_id;index"`
	Company   *Company      `gorm:"foreignKey:CompanyID"`
	Note      string        `gorm:"type:text"`
	Status    ContactStatus `gorm:"type:varchar(20);not null;default:'none';index"`
	Domain    string        `gorm:"type:varchar(100)"`
	Province  string        `gorm:"type:varchar(100)"`
	Level     Level         `gorm:"type:varchar(20);not null;default:'none';index"`
	OwnerID   *uint         `gorm:"column:owner_id;index"`
	Owner     *Account      `gorm:"foreignKey:OwnerID"`
	CreatedBy *uint         `gorm:"column:created_by"`
	Calls     []Call        `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
	FollowUps []FollowUp    `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
}

// DeriveFullName builds the display name from trimmed name parts
func DeriveFullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// Call represents a single logged phone call against a contact
type Call struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	ContactID   uint       `gorm:"not null;column:contact_id;index"`
	Contact     *Contact   `gorm:"foreignKey:ContactID"`
	CalledAt    time.Time  `gorm:"not null;column:called_at;index"`
	Status      CallStatus `gorm:"type:varchar(20);not null;check:status IN ('failed','successful','off','rejected')"`
	Description string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// FollowUp represents a scheduled task tied to a contact
type FollowUp struct {
	BaseModel
	ContactID uint           `gorm:"not null;column:contact_id;index"`
	Contact   *Contact       `gorm:"foreignKey:ContactID"`
	Title     string         `gorm:"type:varchar(200)"`
	Details   string         `gorm:"type:text"`
	DueAt     time.Time      `gorm:"not null;column:due_at;index"`
	Status    FollowUpStatus `gorm:"type:varchar(20);not null;default:'in_progress';check:status IN ('in_progress','done')"`
}

// TableName overrides the default table name
func (FollowUp) TableName() string {
	return "followups"
}

// Product represents a sellable item
type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Category  string    `gorm:"type:varchar(100);index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Order represents a product order placed by a contact or company
type Order struct {
	BaseModel
	ContactID   *uint       `gorm:"column:contact_id;index"`
	Contact     *Contact    `gorm:"foreignKey:ContactID"`
	CompanyID   *uint       `gorm:"column:company_id;index"`
	Company     *Company    `gorm:"foreignKey:CompanyID"`
	ProductID   uint        `gorm:"not null;column:product_id;index"`
	Product     *Product    `gorm:"foreignKey:ProductID"`
	OrderedAt   time.Time   `gorm:"not null;column:ordered_at;index"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'pursuing';index"`
	TotalAmount float64     `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
}

// Account represents an application login identity, distinct from a contact
type Account struct {
	BaseModel
	Username        string   `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash    string   `gorm:"type:varchar(200);not null;column:password_hash"`
	Role            Role     `gorm:"type:varchar(20);not null;default:'agent'"`
	LinkedContactID *uint    `gorm:"column:linked_contact_id"`
	LinkedContact   *Contact `gorm:"foreignKey:LinkedContactID;constraint:OnDelete:SET NULL"`
}

// Session represents an issued bearer token. A nil expiry never expires.
type Session struct {
	Token     string     `gorm:"type:varchar(64);primaryKey"`
	AccountID uint       `gorm:"not null;column:account_id;index"`
	Account   *Account   `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
}

// IsExpired reports whether the session is past its expiry at the given time
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
