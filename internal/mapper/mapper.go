package mapper

import (
	"time"

	"github.com/fardapack/crm-api/internal/domain"
	"github.com/fardapack/crm-api/internal/repository"
)

// Mapper functions convert models and report rows to DTOs. Derived
// timestamp columns arrive as stored strings and are normalized to ISO
// 8601; unparsable values are passed through untouched.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatStored(s string) string {
	if t, ok := repository.ParseStoredTime(s); ok {
		return formatTime(t)
	}
	return s
}

// openFollowUpText translates the existence flag and max due date into
// display text
func openFollowUpText(hasOpen bool, due string) string {
	if !hasOpen {
		return "none"
	}
	if due == "" {
		return "open"
	}
	return formatStored(due)
}

func ToCompanyDTO(company *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:        company.ID,
		Name:      company.Name,
		Phone:     company.Phone,
		Address:   company.Address,
		Note:      company.Note,
		Level:     company.Level,
		Status:    company.Status,
		CreatedAt: formatTime(company.CreatedAt),
		UpdatedAt: formatTime(company.UpdatedAt),
	}
}

func ToCompanyReportDTO(row *repository.CompanyReportRow) domain.CompanyReportDTO {
	return domain.CompanyReportDTO{
		CompanyDTO: domain.CompanyDTO{
			ID:        row.ID,
			Name:      row.Name,
			Phone:     row.Phone,
			Address:   row.Address,
			Note:      row.Note,
			Level:     domain.Level(row.Level),
			Status:    domain.CompanyStatus(row.Status),
			CreatedAt: formatTime(row.CreatedAt),
			UpdatedAt: formatTime(row.UpdatedAt),
		},
		ContactCount:    row.ContactCount,
		AgentUsernames:  row.AgentUsernames,
		OpenFollowUp:    openFollowUpText(row.HasOpenFollowUp, row.OpenFollowUpDue),
		HasOpenFollowUp: row.HasOpenFollowUp,
	}
}

func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	dto := domain.ContactDTO{
		ID:        contact.ID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		FullName:  contact.FullName,
		Phone:     contact.Phone,
		Role:      contact.Role,
		CompanyID: contact.CompanyID,
		Note:      contact.Note,
		Status:    contact.Status,
		Domain:    contact.Domain,
		Province:  contact.Province,
		Level:     contact.Level,
		OwnerID:   contact.OwnerID,
		CreatedAt: formatTime(contact.CreatedAt),
		UpdatedAt: formatTime(contact.UpdatedAt),
	}
	if contact.Company != nil {
		dto.CompanyName = contact.Company.Name
	}
	if contact.Owner != nil {
		dto.OwnerName = contact.Owner.Username
	}
	return dto
}

func ToContactReportDTO(row *repository.ContactReportRow) domain.ContactReportDTO {
	return domain.ContactReportDTO{
		ContactDTO: domain.ContactDTO{
			ID:          row.ID,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			FullName:    row.FullName,
			Phone:       row.Phone,
			Role:        row.Role,
			CompanyID:   row.CompanyID,
			CompanyName: row.CompanyName,
			Note:        row.Note,
			Status:      domain.ContactStatus(row.Status),
			Domain:      row.Domain,
			Province:    row.Province,
			Level:       domain.Level(row.Level),
			OwnerID:     row.OwnerID,
			OwnerName:   row.OwnerName,
			CreatedAt:   formatTime(row.CreatedAt),
			UpdatedAt:   formatTime(row.UpdatedAt),
		},
		LastCallAt:      formatStored(row.LastCallAt),
		LastCallStatus:  row.LastCallStatus,
		OpenFollowUp:    openFollowUpText(row.HasOpenFollowUp, row.OpenFollowUpDue),
		HasOpenFollowUp: row.HasOpenFollowUp,
	}
}

func ToCallReportDTO(row *repository.CallReportRow) domain.CallDTO {
	return domain.CallDTO{
		ID:          row.ID,
		ContactID:   row.ContactID,
		ContactName: row.ContactName,
		CompanyName: row.CompanyName,
		OwnerName:   row.OwnerName,
		CalledAt:    formatTime(row.CalledAt),
		Status:      domain.CallStatus(row.Status),
		Description: row.Description,
		CreatedAt:   formatTime(row.CreatedAt),
	}
}

func ToCallDTO(call *domain.Call) domain.CallDTO {
	dto := domain.CallDTO{
		ID:          call.ID,
		ContactID:   call.ContactID,
		CalledAt:    formatTime(call.CalledAt),
		Status:      call.Status,
		Description: call.Description,
		CreatedAt:   formatTime(call.CreatedAt),
	}
	if call.Contact != nil {
		dto.ContactName = call.Contact.FullName
	}
	return dto
}

func ToFollowUpReportDTO(row *repository.FollowUpReportRow) domain.FollowUpDTO {
	return domain.FollowUpDTO{
		ID:          row.ID,
		ContactID:   row.ContactID,
		ContactName: row.ContactName,
		CompanyName: row.CompanyName,
		OwnerName:   row.OwnerName,
		Title:       row.Title,
		Details:     row.Details,
		DueAt:       formatTime(row.DueAt),
		Status:      domain.FollowUpStatus(row.Status),
		CreatedAt:   formatTime(row.CreatedAt),
		UpdatedAt:   formatTime(row.UpdatedAt),
	}
}

func ToFollowUpDTO(followUp *domain.FollowUp) domain.FollowUpDTO {
	dto := domain.FollowUpDTO{
		ID:        followUp.ID,
		ContactID: followUp.ContactID,
		Title:     followUp.Title,
		Details:   followUp.Details,
		DueAt:     formatTime(followUp.DueAt),
		Status:    followUp.Status,
		CreatedAt: formatTime(followUp.CreatedAt),
		UpdatedAt: formatTime(followUp.UpdatedAt),
	}
	if followUp.Contact != nil {
		dto.ContactName = followUp.Contact.FullName
	}
	return dto
}

func ToProductDTO(product *domain.Product) domain.ProductDTO {
	return domain.ProductDTO{
		ID:        product.ID,
		Category:  product.Category,
		Name:      product.Name,
		CreatedAt: formatTime(product.CreatedAt),
	}
}

func ToOrderReportDTO(row *repository.OrderReportRow) domain.OrderDTO {
	return domain.OrderDTO{
		ID:          row.ID,
		ContactID:   row.ContactID,
		ContactName: row.ContactName,
		CompanyID:   row.CompanyID,
		CompanyName: row.CompanyName,
		ProductID:   row.ProductID,
		ProductName: row.ProductName,
		OrderedAt:   formatTime(row.OrderedAt),
		Status:      domain.OrderStatus(row.Status),
		TotalAmount: row.TotalAmount,
		CreatedAt:   formatTime(row.CreatedAt),
		UpdatedAt:   formatTime(row.UpdatedAt),
	}
}

func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:          order.ID,
		ContactID:   order.ContactID,
		CompanyID:   order.CompanyID,
		ProductID:   order.ProductID,
		OrderedAt:   formatTime(order.OrderedAt),
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   formatTime(order.CreatedAt),
		UpdatedAt:   formatTime(order.UpdatedAt),
	}
	if order.Contact != nil {
		dto.ContactName = order.Contact.FullName
	}
	if order.Company != nil {
		dto.CompanyName = order.Company.Name
	}
	if order.Product != nil {
		dto.ProductName = order.Product.Name
	}
	return dto
}

func ToAccountDTO(account *domain.Account) domain.AccountDTO {
	return domain.AccountDTO{
		ID:              account.ID,
		Username:        account.Username,
		Role:            account.Role,
		LinkedContactID: account.LinkedContactID,
		CreatedAt:       formatTime(account.CreatedAt),
	}
}
