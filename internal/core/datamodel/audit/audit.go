package audit

import (
	"encoding/json"

	"github.com/ashraf950/timesheet-client/internal/core/datamodel"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
	OutcomeError   Outcome = "ERROR"
)

var Outcomes = []Outcome{OutcomeSuccess, OutcomeFailed, OutcomeError}

// Actions the backend is known to log; used for filter hints only.
var Actions = []string{
	"LOGIN", "LOGOUT", "REGISTER",
	"TIMESHEET_CREATE", "TIMESHEET_UPDATE", "TIMESHEET_DELETE",
	"TIMESHEET_APPROVED", "TIMESHEET_REJECTED",
	"INVOICE_GENERATE", "PAYMENT_RECORDED",
}

var ResourceTypes = []string{"User", "Timesheet", "Invoice", "Payment", "Approval", "System"}

// Record is a server-generated audit entry. The client never creates or
// changes these.
type Record struct {
	ID           string           `json:"_id,omitempty"`
	AltID        string           `json:"id,omitempty"`
	Timestamp    string           `json:"timestamp"`
	UserID       user.Ref         `json:"userId"`
	UserEmail    string           `json:"userEmail,omitempty"`
	UserRole     string           `json:"userRole,omitempty"`
	Action       string           `json:"action"`
	ResourceType string           `json:"resourceType"`
	ResourceID   string           `json:"resourceId,omitempty"`
	Status       Outcome          `json:"status"`
	IPAddress    string           `json:"ipAddress,omitempty"`
	Duration     datamodel.Number `json:"duration,omitempty"`
	Details      json.RawMessage  `json:"details,omitempty"`
}

func (r Record) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.AltID
}

// Actor names whoever performed the action, as well as the record allows.
func (r Record) Actor() string {
	if r.UserID.User != nil {
		return r.UserID.User.DisplayName()
	}
	if r.UserEmail != "" {
		return r.UserEmail
	}
	return r.UserID.Key()
}

// Filters are the query parameters accepted by the audit-log list.
type Filters struct {
	UserID       string `json:"userId,omitempty"`
	Action       string `json:"action,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	Status       string `json:"status,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Page         int    `json:"page"`
	Limit        int    `json:"limit"`
}

func DefaultFilters() Filters {
	return Filters{Page: 1, Limit: 50}
}

// Merge overlays the non-zero fields of patch onto f.
func (f Filters) Merge(patch Filters) Filters {
	if patch.UserID != "" {
		f.UserID = patch.UserID
	}
	if patch.Action != "" {
		f.Action = patch.Action
	}
	if patch.ResourceType != "" {
		f.ResourceType = patch.ResourceType
	}
	if patch.Status != "" {
		f.Status = patch.Status
	}
	if patch.StartDate != "" {
		f.StartDate = patch.StartDate
	}
	if patch.EndDate != "" {
		f.EndDate = patch.EndDate
	}
	if patch.Page > 0 {
		f.Page = patch.Page
	}
	if patch.Limit > 0 {
		f.Limit = patch.Limit
	}
	return f
}
