// Package invoice caches invoices and generates new ones. Fetching and
// generating are tracked separately so a running generation never hides
// the list's own loading state.
package invoice

import (
	"context"
	"log/slog"
	"net/url"

	invoiceDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/invoice"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
	"github.com/ashraf950/timesheet-client/internal/core/events"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/normalize"
)

const OpGenerate = "generate"

const (
	MsgFetchFailed    = "Failed to fetch invoices"
	MsgGenerateFailed = "Failed to generate invoice"
)

type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
}

type Store struct {
	api      Backend
	logger   *slog.Logger
	events   events.Publisher
	invoices *state.Collection[invoiceDatamodel.Invoice]
}

func NewStore(api Backend, logger *slog.Logger) *Store {
	return &Store{
		api:      api,
		logger:   logger,
		invoices: state.NewCollection[invoiceDatamodel.Invoice](OpGenerate),
	}
}

// Notify announces each generated invoice on p.
func (s *Store) Notify(p events.Publisher) {
	s.events = p
}

func (s *Store) Fetch(ctx context.Context) error {
	s.invoices.Begin()

	raw, err := s.api.Get(ctx, "/invoice", nil)
	if err != nil {
		s.logger.Warn("failed to fetch invoices", "error", err)
		s.invoices.Fail(state.FailureFrom(err, MsgFetchFailed))
		return err
	}

	invoices := normalize.List[invoiceDatamodel.Invoice](raw, "invoices")
	s.invoices.Replace(invoices)
	s.logger.Debug("invoices fetched", "count", len(invoices))
	return nil
}

// Generate creates an invoice and appends the backend's record to the
// cache. Whether the backend also opens a pending payment for it is up
// to the backend; subscribers of the generated event refresh whatever
// they show.
func (s *Store) Generate(ctx context.Context, req GenerateRequest) (invoiceDatamodel.Invoice, error) {
	if appErr := req.Validate(); appErr != nil {
		return invoiceDatamodel.Invoice{}, appErr
	}

	s.invoices.BeginOp(OpGenerate)

	raw, err := s.api.Post(ctx, "/invoice/generate", req)
	if err != nil {
		s.logger.Warn("failed to generate invoice", "error", err, "user_id", req.UserID)
		s.invoices.FailOp(OpGenerate, state.FailureFrom(err, MsgGenerateFailed))
		return invoiceDatamodel.Invoice{}, err
	}

	inv, ok := normalize.Record[invoiceDatamodel.Invoice](raw, "invoice")
	if !ok || (inv.Key() == "" && inv.InvoiceNumber == "") {
		inv = req.invoice()
	}

	s.invoices.CompleteOp(OpGenerate, state.Append(inv))
	s.logger.Info("invoice generated", "id", inv.Key(), "number", inv.InvoiceNumber, "total", inv.TotalAmount.String())

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewInvoiceGeneratedEvent(inv)); err != nil {
			s.logger.Warn("follow-up after invoice generation failed", "error", err)
		}
	}
	return inv, nil
}

// Users lists the people an invoice can be generated for. The dedicated
// endpoint is preferred; when it is missing the directory is rebuilt
// from the populated userId objects of the known invoices.
func (s *Store) Users(ctx context.Context) ([]user.User, error) {
	raw, err := s.api.Get(ctx, "/auth/users", nil)
	if err == nil {
		if ok, _ := normalize.Field[bool](raw, "success"); ok {
			return normalize.List[user.User](raw, "users"), nil
		}
	} else {
		s.logger.Debug("user endpoint unavailable, deriving users from invoices", "error", err)
	}

	invoices := s.invoices.Items()
	if len(invoices) == 0 {
		raw, err := s.api.Get(ctx, "/invoice", nil)
		if err != nil {
			return []user.User{}, err
		}
		invoices = normalize.List[invoiceDatamodel.Invoice](raw, "invoices")
	}
	return UsersFromInvoices(invoices), nil
}

// UsersFromInvoices collects each distinct populated user, in order of
// first appearance. Bare id references carry no user and are skipped.
func UsersFromInvoices(invoices []invoiceDatamodel.Invoice) []user.User {
	seen := make(map[string]bool)
	users := make([]user.User, 0)
	for _, inv := range invoices {
		if !inv.UserID.Populated() {
			continue
		}
		u := *inv.UserID.User
		id := u.Key()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if u.Name == "" {
			u.Name = "Unknown User"
		}
		if u.Role == "" {
			u.Role = user.RoleEmployee
		}
		users = append(users, u)
	}
	return users
}

func (s *Store) ClearErrors() {
	s.invoices.ClearErrors()
}

func (s *Store) Invoices() []invoiceDatamodel.Invoice {
	return s.invoices.Items()
}

func (s *Store) Snapshot() state.Snapshot[invoiceDatamodel.Invoice] {
	return s.invoices.Snapshot()
}
