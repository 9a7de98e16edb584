package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/common/validation"
	invoiceDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/invoice"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
)

// GenerateRequest asks the backend to bill a user's hours for a period.
// The amount is computed server-side.
type GenerateRequest struct {
	UserID      string          `json:"userId" validate:"required"`
	ClientName  string          `json:"clientName" validate:"required"`
	ClientEmail string          `json:"clientEmail" validate:"required,email"`
	StartDate   string          `json:"startDate" validate:"required,isodate"`
	EndDate     string          `json:"endDate" validate:"required,isodate"`
	HourlyRate  decimal.Decimal `json:"hourlyRate" validate:"dpositive"`
}

func (r GenerateRequest) Validate() *internal.AppError {
	if appErr := validation.Struct(r); appErr != nil {
		return appErr
	}
	return validation.DateRange("startDate", r.StartDate, "endDate", r.EndDate)
}

func (r GenerateRequest) invoice() invoiceDatamodel.Invoice {
	return invoiceDatamodel.Invoice{
		UserID:      user.Ref{ID: r.UserID},
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		HourlyRate:  r.HourlyRate,
		Status:      invoiceDatamodel.StatusDraft,
	}
}
