package approval

import (
	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/common/validation"
	timesheetDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/timesheet"
)

// DecisionRequest is the body of an approval update.
type DecisionRequest struct {
	Status   timesheetDatamodel.Status `json:"status" validate:"required,oneof=Approved Rejected"`
	Comments string                    `json:"comments,omitempty"`
}

func (r DecisionRequest) Validate() *internal.AppError {
	return validation.Struct(r)
}
