// Package audit reads the server's audit trail: filtered pages of
// records, one user's activity, and file exports. Nothing here writes
// audit records.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/api"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel"
	auditDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/audit"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/normalize"
)

const (
	OpActivity = "activity"
	OpExport   = "export"
)

const (
	MsgFetchFailed    = "Error fetching audit logs"
	MsgActivityFailed = "Error fetching user activity"
	MsgExportFailed   = "Error exporting audit logs"
)

type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Download(ctx context.Context, path string, query url.Values) (*api.Download, error)
}

// Export is a downloaded audit file, named the way the client saves it.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Snapshot struct {
	state.Snapshot[auditDatamodel.Record]
	Pagination   datamodel.Pagination   `json:"pagination"`
	Filters      auditDatamodel.Filters `json:"filters"`
	UserActivity json.RawMessage        `json:"userActivity"`
}

type Store struct {
	api    Backend
	logger *slog.Logger
	now    func() time.Time
	logs   *state.Collection[auditDatamodel.Record]

	mu         sync.RWMutex
	pagination datamodel.Pagination
	filters    auditDatamodel.Filters
	activity   json.RawMessage
}

func NewStore(api Backend, logger *slog.Logger) *Store {
	return &Store{
		api:        api,
		logger:     logger,
		now:        time.Now,
		logs:       state.NewCollection[auditDatamodel.Record](OpActivity, OpExport),
		pagination: datamodel.Pagination{Page: 1, Limit: 50},
		filters:    auditDatamodel.DefaultFilters(),
	}
}

// WithClock replaces the clock used to name exports.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Fetch loads one page of records matching filters. The pagination
// block is kept from the previous page when the response has none.
func (s *Store) Fetch(ctx context.Context, filters auditDatamodel.Filters) error {
	s.logs.Begin()

	raw, err := s.api.Get(ctx, "/audit-logs", listQuery(filters))
	if err != nil {
		s.logger.Warn("failed to fetch audit logs", "error", err)
		s.logs.Fail(state.FailureFrom(err, MsgFetchFailed))
		return err
	}

	records := normalize.List[auditDatamodel.Record](raw, "logs")
	if p, ok := normalize.Field[datamodel.Pagination](raw, "data", "pagination"); ok {
		s.mu.Lock()
		s.pagination = p
		s.mu.Unlock()
	}
	s.logs.Replace(records)
	s.logger.Debug("audit logs fetched", "count", len(records), "page", filters.Page)
	return nil
}

// FetchUserActivity loads the activity report for one user. The report
// is kept as the backend sent it.
func (s *Store) FetchUserActivity(ctx context.Context, userID string) (json.RawMessage, error) {
	if userID == "" {
		return nil, internal.NewValidationFieldError("userId", "userId is required", internal.ErrCodeValidationFailed)
	}

	s.logs.BeginOp(OpActivity)

	raw, err := s.api.Get(ctx, "/audit-logs/user/"+url.PathEscape(userID), nil)
	if err != nil {
		s.logger.Warn("failed to fetch user activity", "error", err, "user_id", userID)
		s.logs.FailOp(OpActivity, state.FailureFrom(err, MsgActivityFailed))
		return nil, err
	}

	activity, ok := normalize.Field[json.RawMessage](raw, "data")
	if !ok {
		activity = nil
	}

	s.mu.Lock()
	s.activity = activity
	s.mu.Unlock()

	s.logs.CompleteOp(OpActivity, nil)
	return activity, nil
}

// Export downloads the audit trail as a file named
// audit-logs-<unix millis>.<format>.
func (s *Store) Export(ctx context.Context, req ExportRequest) (*Export, error) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}

	s.logs.BeginOp(OpExport)

	dl, err := s.api.Download(ctx, "/audit-logs/export", req.query())
	if err != nil {
		s.logger.Warn("failed to export audit logs", "error", err, "format", req.Format)
		s.logs.FailOp(OpExport, state.FailureFrom(err, MsgExportFailed))
		return nil, err
	}

	s.logs.CompleteOp(OpExport, nil)
	return &Export{
		Filename:    ExportFilename(req.Format, s.now()),
		ContentType: dl.ContentType,
		Body:        dl.Body,
	}, nil
}

func ExportFilename(format Format, at time.Time) string {
	return fmt.Sprintf("audit-logs-%d.%s", at.UnixMilli(), format)
}

// SetFilters overlays the non-zero fields of patch onto the current
// filters.
func (s *Store) SetFilters(patch auditDatamodel.Filters) auditDatamodel.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.Merge(patch)
	return s.filters
}

func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = auditDatamodel.DefaultFilters()
}

func (s *Store) Filters() auditDatamodel.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

func (s *Store) ClearError() {
	s.logs.ClearErrors()
}

func (s *Store) Logs() []auditDatamodel.Record {
	return s.logs.Items()
}

func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{Snapshot: s.logs.Snapshot()}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap.Pagination = s.pagination
	snap.Filters = s.filters
	if s.activity != nil {
		snap.UserActivity = append(json.RawMessage(nil), s.activity...)
	}
	return snap
}
