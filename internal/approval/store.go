// Package approval caches timesheet entries awaiting a decision and
// submits Approved/Rejected outcomes for them.
package approval

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ashraf950/timesheet-client/internal"
	timesheetDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/timesheet"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/normalize"
)

const OpUpdate = "update"

const (
	MsgFetchFailed  = "Failed to fetch pending approvals"
	MsgUpdateFailed = "Failed to update approval"
)

type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Put(ctx context.Context, path string, body any) ([]byte, error)
}

type Store struct {
	api     Backend
	logger  *slog.Logger
	pending *state.Collection[timesheetDatamodel.Entry]
}

func NewStore(api Backend, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		logger:  logger,
		pending: state.NewCollection[timesheetDatamodel.Entry](OpUpdate),
	}
}

func (s *Store) FetchPending(ctx context.Context) error {
	s.pending.Begin()

	raw, err := s.api.Get(ctx, "/approval/pending", nil)
	if err != nil {
		s.logger.Warn("failed to fetch pending approvals", "error", err)
		s.pending.Fail(state.FailureFrom(err, MsgFetchFailed))
		return err
	}

	entries := normalize.List[timesheetDatamodel.Entry](raw, "timesheets", "approvals")
	s.pending.Replace(entries)
	s.logger.Debug("pending approvals fetched", "count", len(entries))
	return nil
}

// Decide records an outcome for a pending entry. A decision for an entry
// the store already knows as decided is refused without a request, so
// an entry moves out of Pending at most once from this client. On
// success the entry leaves the pending list.
func (s *Store) Decide(ctx context.Context, id string, req DecisionRequest) error {
	if id == "" {
		return internal.NewValidationFieldError("id", "id is required", internal.ErrCodeValidationFailed)
	}
	if appErr := req.Validate(); appErr != nil {
		return appErr
	}
	if entry, ok := state.Find(s.pending.Items(), id); ok && entry.CurrentStatus().Decided() {
		return internal.NewConflictError(
			fmt.Sprintf("Timesheet %s is already %s", id, entry.CurrentStatus()), internal.ErrCodeAlreadyDecided)
	}

	s.pending.BeginOp(OpUpdate)

	_, err := s.api.Put(ctx, "/approval/update/"+url.PathEscape(id), req)
	if err != nil {
		s.logger.Warn("failed to update approval", "error", err, "id", id, "status", req.Status)
		s.pending.FailOp(OpUpdate, state.FailureFrom(err, MsgUpdateFailed))
		return err
	}

	s.pending.CompleteOp(OpUpdate, state.RemoveByKey[timesheetDatamodel.Entry](id))
	s.logger.Info("approval decided", "id", id, "status", req.Status)
	return nil
}

func (s *Store) ClearErrors() {
	s.pending.ClearErrors()
}

func (s *Store) Pending() []timesheetDatamodel.Entry {
	return s.pending.Items()
}

func (s *Store) Snapshot() state.Snapshot[timesheetDatamodel.Entry] {
	return s.pending.Snapshot()
}
