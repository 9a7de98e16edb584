// Package payment caches payments with the list's summary and paging
// blocks, and reconciles payments against received funds.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel"
	paymentDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/payment"
	"github.com/ashraf950/timesheet-client/internal/core/events"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/normalize"
)

const OpReconcile = "reconcile"

const (
	MsgFetchFailed     = "Failed to fetch payments"
	MsgReconcileFailed = "Failed to reconcile payment"
)

type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
}

type Snapshot struct {
	state.Snapshot[paymentDatamodel.Payment]
	Summary    *paymentDatamodel.Summary `json:"summary"`
	Pagination *datamodel.Pagination     `json:"pagination"`
}

type Store struct {
	api      Backend
	logger   *slog.Logger
	events   events.Publisher
	payments *state.Collection[paymentDatamodel.Payment]

	mu         sync.RWMutex
	summary    *paymentDatamodel.Summary
	pagination *datamodel.Pagination
}

func NewStore(api Backend, logger *slog.Logger) *Store {
	return &Store{
		api:      api,
		logger:   logger,
		payments: state.NewCollection[paymentDatamodel.Payment](OpReconcile),
	}
}

// Notify announces each reconciled payment on p.
func (s *Store) Notify(p events.Publisher) {
	s.events = p
}

func (s *Store) Fetch(ctx context.Context) error {
	s.payments.Begin()

	raw, err := s.api.Get(ctx, "/payment", nil)
	if err != nil {
		s.logger.Warn("failed to fetch payments", "error", err)
		s.setMeta(nil, nil)
		s.payments.Fail(state.FailureFrom(err, MsgFetchFailed))
		return err
	}

	payments := normalize.List[paymentDatamodel.Payment](raw, "payments")

	var summary *paymentDatamodel.Summary
	if v, ok := normalize.Field[paymentDatamodel.Summary](raw, "data", "summary"); ok {
		summary = &v
	}
	var pagination *datamodel.Pagination
	if v, ok := normalize.Field[datamodel.Pagination](raw, "data", "pagination"); ok {
		pagination = &v
	}

	s.setMeta(summary, pagination)
	s.payments.Replace(payments)
	s.logger.Debug("payments fetched", "count", len(payments))
	return nil
}

// Reconcile settles a payment. The request is checked locally first and
// a payment already known as paid is refused; neither case sends a
// request or changes state.
func (s *Store) Reconcile(ctx context.Context, req ReconcileRequest) (paymentDatamodel.Payment, error) {
	if appErr := req.Validate(); appErr != nil {
		s.logger.Info("reconciliation rejected locally", "error", appErr.GetDetailedMessage())
		return paymentDatamodel.Payment{}, appErr
	}

	cached, known := state.Find(s.payments.Items(), req.PaymentID)
	if known && cached.CurrentStatus() == paymentDatamodel.StatusPaid {
		return paymentDatamodel.Payment{}, internal.NewConflictError(
			fmt.Sprintf("Payment %s is already reconciled", req.PaymentID), internal.ErrCodeAlreadyReconciled)
	}

	s.payments.BeginOp(OpReconcile)

	raw, err := s.api.Post(ctx, "/payment/reconcile", req)
	if err != nil {
		s.logger.Warn("failed to reconcile payment", "error", err, "payment_id", req.PaymentID)
		s.payments.FailOp(OpReconcile, state.FailureFrom(err, MsgReconcileFailed))
		return paymentDatamodel.Payment{}, err
	}

	updated, ok := normalize.Record[paymentDatamodel.Payment](raw, "payment")
	if !ok || updated.Key() == "" {
		if !known {
			cached = paymentDatamodel.Payment{ID: req.PaymentID}
		}
		updated = req.applyTo(cached)
	}

	s.payments.CompleteOp(OpReconcile, state.ReplaceByKey(updated))
	s.logger.Info("payment reconciled", "payment_id", updated.Key(), "method", updated.PaymentMethod)

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewPaymentReconciledEvent(updated)); err != nil {
			s.logger.Warn("follow-up after reconciliation failed", "error", err)
		}
	}
	return updated, nil
}

func (s *Store) ClearErrors() {
	s.payments.ClearErrors()
}

func (s *Store) Payments() []paymentDatamodel.Payment {
	return s.payments.Items()
}

func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{Snapshot: s.payments.Snapshot()}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary != nil {
		v := *s.summary
		snap.Summary = &v
	}
	if s.pagination != nil {
		v := *s.pagination
		snap.Pagination = &v
	}
	return snap
}

func (s *Store) setMeta(summary *paymentDatamodel.Summary, pagination *datamodel.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
	s.pagination = pagination
}
