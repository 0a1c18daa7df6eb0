package domain

// DTOs for API responses

type CompanyDTO struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone,omitempty"`
	Address   string        `json:"address,omitempty"`
	Note      string        `json:"note,omitempty"`
	Level     Level         `json:"level"`
	Status    CompanyStatus `json:"status"`
	CreatedAt string        `json:"createdAt"` // ISO 8601
	UpdatedAt string        `json:"updatedAt"` // ISO 8601
}

// CompanyReportDTO is a company row shaped for listings, with the
// derived columns the report query materializes.
type CompanyReportDTO struct {
	CompanyDTO
	ContactCount    int    `json:"contactCount"`
	AgentUsernames  string `json:"agentUsernames,omitempty"`
	OpenFollowUp    string `json:"openFollowUp"`
	HasOpenFollowUp bool   `json:"hasOpenFollowUp"`
}

type ContactDTO struct {
	ID          uint          `json:"id"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName,omitempty"`
	FullName    string        `json:"fullName"`
	Phone       string        `json:"phone,omitempty"`
	Role        string        `json:"role,omitempty"`
	CompanyID   *uint         `json:"companyId,omitempty"`
	CompanyName string        `json:"companyName,omitempty"`
	Note        string        `json:"note,omitempty"`
	Status      ContactStatus `json:"status"`
	Domain      string        `json:"domain,omitempty"`
	Province    string        `json:"province,omitempty"`
	Level       Level         `json:"level"`
	OwnerID     *uint         `json:"ownerId,omitempty"`
	OwnerName   string        `json:"ownerName,omitempty"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

// ContactReportDTO is a contact row shaped for listings, with the
// derived last-call and follow-up columns.
type ContactReportDTO struct {
	ContactDTO
	LastCallAt      string `json:"lastCallAt,omitempty"`
	LastCallStatus  string `json:"lastCallStatus,omitempty"`
	OpenFollowUp    string `json:"openFollowUp"`
	HasOpenFollowUp bool   `json:"hasOpenFollowUp"`
}

type CallDTO struct {
	ID          uint       `json:"id"`
	ContactID   uint       `json:"contactId"`
	ContactName string     `json:"contactName,omitempty"`
	CompanyName string     `json:"companyName,omitempty"`
	OwnerName   string     `json:"ownerName,omitempty"`
	CalledAt    string     `json:"calledAt"`
	Status      CallStatus `json:"status"`
	Description string     `json:"description,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}

type FollowUpDTO struct {
	ID          uint           `json:"id"`
	ContactID   uint           `json:"contactId"`
	ContactName string         `json:"contactName,omitempty"`
	CompanyName string         `json:"companyName,omitempty"`
	OwnerName   string         `json:"ownerName,omitempty"`
	Title       string         `json:"title,omitempty"`
	Details     string         `json:"details,omitempty"`
	DueAt       string         `json:"dueAt"`
	Status      FollowUpStatus `json:"status"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

type ProductDTO struct {
	ID        uint   `json:"id"`
	Category  string `json:"category,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type OrderDTO struct {
	ID          uint        `json:"id"`
	ContactID   *uint       `json:"contactId,omitempty"`
	ContactName string      `json:"contactName,omitempty"`
	CompanyID   *uint       `json:"companyId,omitempty"`
	CompanyName string      `json:"companyName,omitempty"`
	ProductID   uint        `json:"productId"`
	ProductName string      `json:"productName,omitempty"`
	OrderedAt   string      `json:"orderedAt"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

type AccountDTO struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	Role            Role   `json:"role"`
	LinkedContactID *uint  `json:"linkedContactId,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

// LoginResponseDTO is returned on successful authentication
type LoginResponseDTO struct {
	Token     string     `json:"token"`
	ExpiresAt *string    `json:"expiresAt,omitempty"`
	Account   AccountDTO `json:"account"`
}

// BulkReassignResultDTO reports how many contacts actually changed owner
type BulkReassignResultDTO struct {
	Updated int64 `json:"updated"`
}

// OwnerOptionDTO is a select-list entry for assigning contact owners
type OwnerOptionDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// CompanyOptionDTO is a select-list entry for picking a contact's company
type CompanyOptionDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ContactOptionDTO is a select-list entry for picking a contact
type ContactOptionDTO struct {
	ID          uint   `json:"id"`
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName,omitempty"`
}

// ContactProfileDTO bundles everything the contact detail page shows
type ContactProfileDTO struct {
	Contact    ContactReportDTO `json:"contact"`
	Calls      []CallDTO        `json:"calls"`
	FollowUps  []FollowUpDTO    `json:"followUps"`
	Colleagues []ContactDTO     `json:"colleagues"`
}

// CompanyProfileDTO bundles everything the company detail page shows
type CompanyProfileDTO struct {
	Company   CompanyReportDTO `json:"company"`
	Contacts  []ContactDTO     `json:"contacts"`
	Calls     []CallDTO        `json:"calls"`
	FollowUps []FollowUpDTO    `json:"followUps"`
}

// DashboardMetricsDTO aggregates counts for the landing page
type DashboardMetricsDTO struct {
	CallsToday           int64 `json:"callsToday"`
	SuccessfulCallsToday int64 `json:"successfulCallsToday"`
	CallsLast7Days       int64 `json:"callsLast7Days"`
	OverdueFollowUps     int64 `json:"overdueFollowUps"`
	TotalCompanies       int64 `json:"totalCompanies"`
	TotalContacts        int64 `json:"totalContacts"`
}

// RestoreResultDTO describes a completed database restore
type RestoreResultDTO struct {
	BackupPath string `json:"backupPath"`
	Message    string `json:"message"`
}
