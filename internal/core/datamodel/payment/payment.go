package payment

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusPartial Status = "partial"
)

type Method string

const (
	MethodBankTransfer Method = "Bank Transfer"
	MethodCreditCard   Method = "Credit Card"
	MethodPayPal       Method = "PayPal"
	MethodCheck        Method = "Check"
	MethodCash         Method = "Cash"
	MethodOther        Method = "Other"
)

var Methods = []Method{MethodBankTransfer, MethodCreditCard, MethodPayPal, MethodCheck, MethodCash, MethodOther}

type Payment struct {
	ID            string          `json:"_id,omitempty"`
	AltID         string          `json:"id,omitempty"`
	InvoiceID     InvoiceRef      `json:"invoiceId"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"dueDate,omitempty"`
	Status        Status          `json:"status,omitempty"`
	PaymentDate   string          `json:"paymentDate,omitempty"`
	PaymentMethod Method          `json:"paymentMethod,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

func (p Payment) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.AltID
}

func (p Payment) CurrentStatus() Status {
	if p.Status == "" {
		return StatusPending
	}
	return p.Status
}

// Summary is the aggregate block the payment list endpoint returns next
// to the payments themselves.
type Summary struct {
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalPending decimal.Decimal `json:"totalPending"`
	TotalOverdue decimal.Decimal `json:"totalOverdue"`
	Count        int             `json:"count"`
}

// InvoiceRef is the invoice a payment settles, sent either as an id or as
// a populated invoice summary.
type InvoiceRef struct {
	ID            string
	InvoiceNumber string
	ClientName    string
}

func (r InvoiceRef) Key() string {
	return r.ID
}

func (r *InvoiceRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = InvoiceRef{}
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = InvoiceRef{ID: id}
	case len(data) > 0 && data[0] == '{':
		var populated struct {
			ID            string `json:"_id"`
			AltID         string `json:"id"`
			InvoiceNumber string `json:"invoiceNumber"`
			ClientName    string `json:"clientName"`
		}
		if err := json.Unmarshal(data, &populated); err != nil {
			return err
		}
		id := populated.ID
		if id == "" {
			id = populated.AltID
		}
		*r = InvoiceRef{ID: id, InvoiceNumber: populated.InvoiceNumber, ClientName: populated.ClientName}
	default:
		*r = InvoiceRef{ID: string(data)}
	}
	return nil
}

func (r InvoiceRef) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
