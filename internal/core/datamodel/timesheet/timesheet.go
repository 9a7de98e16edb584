package timesheet

import (
	"github.com/ashraf950/timesheet-client/internal/core/datamodel"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Decided reports whether s is a terminal approval outcome.
func (s Status) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

type Entry struct {
	ID          string           `json:"_id,omitempty"`
	AltID       string           `json:"id,omitempty"`
	UserID      user.Ref         `json:"userId"`
	Date        string           `json:"date"`
	Project     string           `json:"project"`
	HoursWorked datamodel.Number `json:"hoursWorked"`
	Description string           `json:"description"`
	Status      Status           `json:"status,omitempty"`
	Comments    string           `json:"comments,omitempty"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}

func (e Entry) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.AltID
}

// CurrentStatus is the entry's status with the backend default applied:
// a freshly submitted entry is Pending until someone decides on it.
func (e Entry) CurrentStatus() Status {
	if e.Status == "" {
		return StatusPending
	}
	return e.Status
}

// Suggestion is the backend's auto-fill proposal for a day.
type Suggestion struct {
	Date        string           `json:"date"`
	Project     string           `json:"project"`
	HoursWorked datamodel.Number `json:"hoursWorked"`
	Description string           `json:"description"`
}
