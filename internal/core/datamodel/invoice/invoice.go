package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/ashraf950/timesheet-client/internal/core/datamodel"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
)

type Status string

const (
	StatusDraft   Status = "Draft"
	StatusSent    Status = "Sent"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
)

type Period struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Invoice mirrors the backend record. TotalAmount is authoritative and
// is never derived from TotalHours and HourlyRate on the client.
type Invoice struct {
	ID            string           `json:"_id,omitempty"`
	AltID         string           `json:"id,omitempty"`
	InvoiceNumber string           `json:"invoiceNumber"`
	UserID        user.Ref         `json:"userId"`
	ClientName    string           `json:"clientName"`
	ClientEmail   string           `json:"clientEmail"`
	Period        *Period          `json:"period,omitempty"`
	StartDate     string           `json:"startDate,omitempty"`
	EndDate       string           `json:"endDate,omitempty"`
	HourlyRate    decimal.Decimal  `json:"hourlyRate"`
	TotalHours    datamodel.Number `json:"totalHours"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	Status        Status           `json:"status,omitempty"`
	CreatedAt     string           `json:"createdAt,omitempty"`
	DueDate       string           `json:"dueDate,omitempty"`
}

func (i Invoice) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.AltID
}

// Billed returns the billing period whether the backend nested it under
// period or sent flat startDate/endDate fields.
func (i Invoice) Billed() Period {
	if i.Period != nil && (i.Period.StartDate != "" || i.Period.EndDate != "") {
		return *i.Period
	}
	return Period{StartDate: i.StartDate, EndDate: i.EndDate}
}

func (i Invoice) CurrentStatus() Status {
	if i.Status == "" {
		return StatusDraft
	}
	return i.Status
}
