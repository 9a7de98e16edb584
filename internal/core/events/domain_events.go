package events

import (
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/invoice"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/payment"
)

const (
	EventTypeInvoiceGenerated  = "invoice.generated"
	EventTypePaymentReconciled = "payment.reconciled"
)

type InvoiceGeneratedEvent struct {
	BaseEvent
	Invoice invoice.Invoice `json:"invoice"`
}

func NewInvoiceGeneratedEvent(inv invoice.Invoice) *InvoiceGeneratedEvent {
	return &InvoiceGeneratedEvent{
		BaseEvent: newBaseEvent(EventTypeInvoiceGenerated),
		Invoice:   inv,
	}
}

type PaymentReconciledEvent struct {
	BaseEvent
	Payment payment.Payment `json:"payment"`
}

func NewPaymentReconciledEvent(p payment.Payment) *PaymentReconciledEvent {
	return &PaymentReconciledEvent{
		BaseEvent: newBaseEvent(EventTypePaymentReconciled),
		Payment:   p,
	}
}
