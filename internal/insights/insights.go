// Package insights computes what the dashboard shows from container
// snapshots. Everything here is recomputed on demand and never stored.
//
// The confidence figures and hour labels are presentation helpers. They
// are not produced by any model and make no claim about the data.
package insights

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/ashraf950/timesheet-client/internal/core/datamodel/invoice"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/payment"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/timesheet"
)

type KPIs struct {
	TotalHours        float64
	Entries           int
	Pending           int
	Approved          int
	Rejected          int
	InvoiceCount      int
	OutstandingAmount decimal.Decimal
	BilledAmount      decimal.Decimal
	PaymentsCollected decimal.Decimal
	PaymentsPending   int
}

// Summarize aggregates whatever lists are at hand; any of them may be
// empty.
func Summarize(entries []timesheet.Entry, invoices []invoice.Invoice, payments []payment.Payment) KPIs {
	k := KPIs{
		OutstandingAmount: decimal.Zero,
		BilledAmount:      decimal.Zero,
		PaymentsCollected: decimal.Zero,
	}

	for _, e := range entries {
		k.Entries++
		k.TotalHours += e.HoursWorked.Float64()
		switch e.CurrentStatus() {
		case timesheet.StatusPending:
			k.Pending++
		case timesheet.StatusApproved:
			k.Approved++
		case timesheet.StatusRejected:
			k.Rejected++
		}
	}

	for _, inv := range invoices {
		k.InvoiceCount++
		k.BilledAmount = k.BilledAmount.Add(inv.TotalAmount)
		if inv.CurrentStatus() != invoice.StatusPaid {
			k.OutstandingAmount = k.OutstandingAmount.Add(inv.TotalAmount)
		}
	}

	for _, p := range payments {
		if p.CurrentStatus() == payment.StatusPaid {
			k.PaymentsCollected = k.PaymentsCollected.Add(p.Amount)
		} else {
			k.PaymentsPending++
		}
	}

	return k
}

type HoursLabel string

const (
	HoursNormal   HoursLabel = "Normal"
	HoursUnusual  HoursLabel = "Unusual"
	HoursHighRisk HoursLabel = "High Risk"
)

// ClassifyHours labels a day's hours: over 12 is High Risk, over 9 is
// Unusual.
func ClassifyHours(hours float64) HoursLabel {
	switch {
	case hours > 12:
		return HoursHighRisk
	case hours > 9:
		return HoursUnusual
	default:
		return HoursNormal
	}
}

// Flag pairs an entry with its label.
type Flag struct {
	Entry timesheet.Entry
	Label HoursLabel
}

// Flagged returns the entries whose label is not Normal.
func Flagged(entries []timesheet.Entry) []Flag {
	out := make([]Flag, 0)
	for _, e := range entries {
		if label := ClassifyHours(e.HoursWorked.Float64()); label != HoursNormal {
			out = append(out, Flag{Entry: e, Label: label})
		}
	}
	return out
}

// Source is the random source behind the cosmetic figures.
type Source interface {
	IntN(n int) int
}

type Presenter struct {
	rnd Source
}

// NewPresenter uses rnd, or a process-wide source when rnd is nil.
func NewPresenter(rnd Source) *Presenter {
	if rnd == nil {
		rnd = globalSource{}
	}
	return &Presenter{rnd: rnd}
}

// AutoFillConfidence is a display percentage in [85, 97].
func (p *Presenter) AutoFillConfidence() int {
	return 85 + p.rnd.IntN(13)
}

// MatchSuggestion is the canned reconciliation hint shown next to an
// unpaid payment.
type MatchSuggestion struct {
	Confidence    int
	PaymentMethod payment.Method
	TransactionID string
	Notes         string
}

// SuggestMatch returns a hint with confidence in [85, 98] and a
// synthetic TXN- reference.
func (p *Presenter) SuggestMatch() MatchSuggestion {
	return MatchSuggestion{
		Confidence:    85 + p.rnd.IntN(14),
		PaymentMethod: payment.MethodBankTransfer,
		TransactionID: "TXN-" + p.reference(9),
		Notes:         "AI Match: Verified against bank feed ending in 4432",
	}
}

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (p *Presenter) reference(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = referenceAlphabet[p.rnd.IntN(len(referenceAlphabet))]
	}
	return string(b)
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}
