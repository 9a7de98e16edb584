package audit

import (
	"net/url"
	"strconv"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/common/validation"
	auditDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/audit"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ExportRequest narrows an export; only Format is required.
type ExportRequest struct {
	Format    Format `json:"format" validate:"required,oneof=csv json"`
	UserID    string `json:"userId,omitempty"`
	StartDate string `json:"startDate,omitempty" validate:"omitempty,isodate"`
	EndDate   string `json:"endDate,omitempty" validate:"omitempty,isodate"`
}

func (r ExportRequest) Validate() *internal.AppError {
	return validation.Struct(r)
}

func (r ExportRequest) query() url.Values {
	q := url.Values{}
	q.Set("format", string(r.Format))
	setIf(q, "userId", r.UserID)
	setIf(q, "startDate", r.StartDate)
	setIf(q, "endDate", r.EndDate)
	return q
}

// listQuery encodes f, leaving out empty filters. page and limit are
// always sent.
func listQuery(f auditDatamodel.Filters) url.Values {
	defaults := auditDatamodel.DefaultFilters()
	if f.Page <= 0 {
		f.Page = defaults.Page
	}
	if f.Limit <= 0 {
		f.Limit = defaults.Limit
	}

	q := url.Values{}
	setIf(q, "userId", f.UserID)
	setIf(q, "action", f.Action)
	setIf(q, "resourceType", f.ResourceType)
	setIf(q, "status", f.Status)
	setIf(q, "startDate", f.StartDate)
	setIf(q, "endDate", f.EndDate)
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
