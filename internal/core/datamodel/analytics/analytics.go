package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/ashraf950/timesheet-client/internal/core/datamodel"
)

// Summary is the KPI block behind the dashboard. Missing fields decode as
// zero, which is also what the dashboard shows for them.
type Summary struct {
	TotalHours        datamodel.Number `json:"totalHours"`
	PendingApprovals  int              `json:"pendingApprovals"`
	ApprovedInvoices  int              `json:"approvedInvoices"`
	PaymentsCollected decimal.Decimal  `json:"paymentsCollected"`
}

type Indicator struct {
	Value       datamodel.Number `json:"value"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
}

type AgingBucket struct {
	Range  string          `json:"range"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type Forecast struct {
	Next30Days       decimal.Decimal `json:"next30Days"`
	ExpectedInvoices int             `json:"expectedInvoices"`
}

type TrendPoint struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
}

type AdvancedMetrics struct {
	DSO              *Indicator    `json:"dso"`
	PaymentAging     []AgingBucket `json:"paymentAging"`
	CashFlowForecast *Forecast     `json:"cashFlowForecast"`
	RevenueTrend     []TrendPoint  `json:"revenueTrend"`
}

// UnavailableMetrics is shown when the backend does not serve advanced
// metrics yet.
func UnavailableMetrics() AdvancedMetrics {
	return AdvancedMetrics{
		DSO:              &Indicator{Value: 0, Description: "Endpoint not available", Status: "info"},
		PaymentAging:     []AgingBucket{},
		CashFlowForecast: &Forecast{},
		RevenueTrend:     []TrendPoint{},
	}
}

func EmptyMetrics() AdvancedMetrics {
	return AdvancedMetrics{
		PaymentAging: []AgingBucket{},
		RevenueTrend: []TrendPoint{},
	}
}
