package payment

import (
	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/common/validation"
	paymentDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/payment"
)

// ReconcileRequest marks a payment as settled.
type ReconcileRequest struct {
	PaymentID     string                  `json:"paymentId" validate:"required"`
	PaymentDate   string                  `json:"paymentDate" validate:"required,isodate"`
	PaymentMethod paymentDatamodel.Method `json:"paymentMethod" validate:"required,oneof='Bank Transfer' 'Credit Card' PayPal Check Cash Other"`
	TransactionID string                  `json:"transactionId,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
}

func (r ReconcileRequest) Validate() *internal.AppError {
	return validation.Struct(r)
}

// applyTo is the payment as the client expects it after a successful
// reconciliation whose response carried no record.
func (r ReconcileRequest) applyTo(p paymentDatamodel.Payment) paymentDatamodel.Payment {
	p.Status = paymentDatamodel.StatusPaid
	p.PaymentDate = r.PaymentDate
	p.PaymentMethod = r.PaymentMethod
	p.TransactionID = r.TransactionID
	p.Notes = r.Notes
	return p
}
