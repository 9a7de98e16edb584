// Package timesheet caches the signed-in user's timesheet entries and
// the latest auto-fill suggestion.
package timesheet

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	timesheetDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/timesheet"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/normalize"
)

const OpAutoFill = "autofill"

const (
	MsgFetchFailed    = "Failed to fetch timesheets"
	MsgAddFailed      = "Failed to add timesheet"
	MsgAutoFillFailed = "Failed to auto-fill timesheet"
)

// Backend is the subset of the API client the store needs.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
}

type Snapshot struct {
	state.Snapshot[timesheetDatamodel.Entry]
	Suggestion *timesheetDatamodel.Suggestion `json:"suggestion"`
}

type Store struct {
	api     Backend
	logger  *slog.Logger
	entries *state.Collection[timesheetDatamodel.Entry]

	mu         sync.RWMutex
	suggestion *timesheetDatamodel.Suggestion
}

func NewStore(api Backend, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		logger:  logger,
		entries: state.NewCollection[timesheetDatamodel.Entry](OpAutoFill),
	}
}

// Fetch replaces the cached entries with the backend's list.
func (s *Store) Fetch(ctx context.Context) error {
	s.entries.Begin()

	raw, err := s.api.Get(ctx, "/timesheet", nil)
	if err != nil {
		s.logger.Warn("failed to fetch timesheets", "error", err)
		s.entries.Fail(state.FailureFrom(err, MsgFetchFailed))
		return err
	}

	entries := normalize.List[timesheetDatamodel.Entry](raw, "timesheets")
	s.entries.Replace(entries)
	s.logger.Debug("timesheets fetched", "count", len(entries))
	return nil
}

// Add submits a new entry. An invalid request is refused before any
// state change. On failure the cached entries are kept.
func (s *Store) Add(ctx context.Context, req AddRequest) (timesheetDatamodel.Entry, error) {
	if appErr := req.Validate(); appErr != nil {
		s.logger.Info("timesheet entry rejected locally", "error", appErr.GetDetailedMessage())
		return timesheetDatamodel.Entry{}, appErr
	}

	s.entries.Begin()

	raw, err := s.api.Post(ctx, "/timesheet/add", req)
	if err != nil {
		s.logger.Warn("failed to add timesheet", "error", err, "date", req.Date, "project", req.Project)
		s.entries.Reject(state.FailureFrom(err, MsgAddFailed))
		return timesheetDatamodel.Entry{}, err
	}

	entry, ok := normalize.Record[timesheetDatamodel.Entry](raw, "timesheet", "entry")
	if !ok || (entry.Date == "" && entry.Project == "") {
		entry = req.entry()
	}

	s.entries.Apply(state.Append(entry))
	s.logger.Info("timesheet entry added", "id", entry.Key(), "date", entry.Date, "hours", entry.HoursWorked)
	return entry, nil
}

// AutoFill asks the backend for a suggested entry. It runs alongside
// Fetch and Add without touching their status.
func (s *Store) AutoFill(ctx context.Context, req AutoFillRequest) (timesheetDatamodel.Suggestion, error) {
	if appErr := req.Validate(); appErr != nil {
		return timesheetDatamodel.Suggestion{}, appErr
	}

	s.entries.BeginOp(OpAutoFill)

	raw, err := s.api.Post(ctx, "/timesheet/auto-fill", req)
	if err != nil {
		s.logger.Warn("auto-fill failed", "error", err, "date", req.Date)
		s.entries.FailOp(OpAutoFill, state.FailureFrom(err, MsgAutoFillFailed))
		return timesheetDatamodel.Suggestion{}, err
	}

	suggestion, ok := normalize.Record[timesheetDatamodel.Suggestion](raw, "suggestion")
	if !ok {
		suggestion = timesheetDatamodel.Suggestion{}
	}
	if suggestion.Date == "" {
		suggestion.Date = req.Date
	}

	s.mu.Lock()
	s.suggestion = &suggestion
	s.mu.Unlock()

	s.entries.CompleteOp(OpAutoFill, nil)
	return suggestion, nil
}

func (s *Store) ClearAutoFill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestion = nil
}

func (s *Store) ClearErrors() {
	s.entries.ClearErrors()
}

func (s *Store) Entries() []timesheetDatamodel.Entry {
	return s.entries.Items()
}

func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{Snapshot: s.entries.Snapshot()}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.suggestion != nil {
		sg := *s.suggestion
		snap.Suggestion = &sg
	}
	return snap
}
