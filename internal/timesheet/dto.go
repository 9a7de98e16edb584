package timesheet

import (
	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/common/validation"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel"
	timesheetDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/timesheet"
)

// AddRequest is the payload for submitting a new entry.
type AddRequest struct {
	Date        string  `json:"date" validate:"required,isodate"`
	Project     string  `json:"project" validate:"required"`
	HoursWorked float64 `json:"hoursWorked" validate:"gt=0,lte=24"`
	Description string  `json:"description" validate:"required"`
}

func (r AddRequest) Validate() *internal.AppError {
	return validation.Struct(r)
}

// entry is what the client assumes the backend stored when the add
// response carries no usable record.
func (r AddRequest) entry() timesheetDatamodel.Entry {
	return timesheetDatamodel.Entry{
		Date:        r.Date,
		Project:     r.Project,
		HoursWorked: datamodel.Number(r.HoursWorked),
		Description: r.Description,
		Status:      timesheetDatamodel.StatusPending,
	}
}

// AutoFillRequest asks the backend to propose an entry for a day.
type AutoFillRequest struct {
	Date string `json:"date" validate:"required,isodate"`
}

func (r AutoFillRequest) Validate() *internal.AppError {
	return validation.Struct(r)
}
