package domain

import "time"

// Request payloads for API operations. Update requests use pointer fields
// so that only explicitly supplied fields are patched.

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateContactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=50"`
	Role      string `json:"role" validate:"max=100"`
	CompanyID *uint  `json:"companyId"`
	// CompanyName resolves the company by name, creating it when absent.
	// Ignored when CompanyID is set.
	CompanyName string `json:"companyName" validate:"max=200"`
	Note        string `json:"note"`
	Status      string `json:"status"`
	Domain      string `json:"domain" validate:"max=100"`
	Province    string `json:"province" validate:"max=100"`
	Level       string `json:"level"`
	OwnerID     *uint  `json:"ownerId"`
}

type UpdateContactRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Role      *string `json:"role" validate:"omitempty,max=100"`
	CompanyID *uint   `json:"companyId"`
	Note      *string `json:"note"`
	Status    *string `json:"status"`
	Domain    *string `json:"domain" validate:"omitempty,max=100"`
	Province  *string `json:"province" validate:"omitempty,max=100"`
	Level     *string `json:"level"`
	OwnerID   *uint   `json:"ownerId"`
}

// BulkReassignRequest moves a set of contacts to a new owner. A nil
// OwnerID unassigns them.
type BulkReassignRequest struct {
	ContactIDs []uint `json:"contactIds" validate:"required,min=1"`
	OwnerID    *uint  `json:"ownerId"`
}

type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
	Note    string `json:"note"`
	Level   string `json:"level"`
	Status  string `json:"status"`
}

type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Note    *string `json:"note"`
	Level   *string `json:"level"`
	Status  *string `json:"status"`
}

type CreateCallRequest struct {
	ContactID   uint      `json:"contactId" validate:"required"`
	CalledAt    time.Time `json:"calledAt" validate:"required"`
	Status      string    `json:"status" validate:"required"`
	Description string    `json:"description"`
}

type CreateFollowUpRequest struct {
	ContactID uint      `json:"contactId" validate:"required"`
	Title     string    `json:"title" validate:"max=200"`
	Details   string    `json:"details"`
	DueAt     time.Time `json:"dueAt" validate:"required"`
	Status    string    `json:"status"`
}

type UpdateFollowUpRequest struct {
	Title   *string    `json:"title" validate:"omitempty,max=200"`
	Details *string    `json:"details"`
	DueAt   *time.Time `json:"dueAt"`
}

type UpdateFollowUpStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CreateProductRequest struct {
	Category string `json:"category" validate:"max=100"`
	Name     string `json:"name" validate:"required,max=200"`
}

type UpdateProductRequest struct {
	Category *string `json:"category" validate:"omitempty,max=100"`
	Name     *string `json:"name" validate:"omitempty,max=200"`
}

type CreateOrderRequest struct {
	ContactID   *uint      `json:"contactId"`
	CompanyID   *uint      `json:"companyId"`
	ProductID   uint       `json:"productId" validate:"required"`
	OrderedAt   *time.Time `json:"orderedAt"`
	Status      string     `json:"status"`
	TotalAmount float64    `json:"totalAmount" validate:"gte=0"`
}

type UpdateOrderRequest struct {
	ContactID   *uint      `json:"contactId"`
	CompanyID   *uint      `json:"companyId"`
	ProductID   *uint      `json:"productId"`
	OrderedAt   *time.Time `json:"orderedAt"`
	Status      *string    `json:"status"`
	TotalAmount *float64   `json:"totalAmount" validate:"omitempty,gte=0"`
}

type CreateAccountRequest struct {
	Username        string `json:"username" validate:"required,max=100"`
	Password        string `json:"password" validate:"required"`
	Role            string `json:"role"`
	LinkedContactID *uint  `json:"linkedContactId"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}
