// Package workspace wires every store to one API client and one session
// and composes them into the views the command line renders.
package workspace

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/access"
	"github.com/ashraf950/timesheet-client/internal/api"
	"github.com/ashraf950/timesheet-client/internal/approval"
	"github.com/ashraf950/timesheet-client/internal/audit"
	"github.com/ashraf950/timesheet-client/internal/auth"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/analytics"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
	"github.com/ashraf950/timesheet-client/internal/core/events"
	"github.com/ashraf950/timesheet-client/internal/dashboard"
	"github.com/ashraf950/timesheet-client/internal/insights"
	"github.com/ashraf950/timesheet-client/internal/invoice"
	"github.com/ashraf950/timesheet-client/internal/payment"
	"github.com/ashraf950/timesheet-client/internal/timesheet"
)

type Workspace struct {
	Auth       *auth.Service
	Timesheets *timesheet.Store
	Approvals  *approval.Store
	Invoices   *invoice.Store
	Payments   *payment.Store
	Dashboard  *dashboard.Store
	Audit      *audit.Store
	Presenter  *insights.Presenter

	logger *slog.Logger
}

func New(client *api.Client, sessions auth.SessionStore, logger *slog.Logger) *Workspace {
	w := &Workspace{
		Auth:       auth.NewService(client, sessions, logger.With("store", "auth")),
		Timesheets: timesheet.NewStore(client, logger.With("store", "timesheet")),
		Approvals:  approval.NewStore(client, logger.With("store", "approval")),
		Invoices:   invoice.NewStore(client, logger.With("store", "invoice")),
		Payments:   payment.NewStore(client, logger.With("store", "payment")),
		Dashboard:  dashboard.NewStore(client, logger.With("store", "dashboard")),
		Audit:      audit.NewStore(client, logger.With("store", "audit")),
		Presenter:  insights.NewPresenter(nil),
		logger:     logger,
	}

	bus := events.NewEventBus(logger.With("component", "events"))
	bus.Subscribe(events.EventTypeInvoiceGenerated, w.refreshPayments)
	bus.Subscribe(events.EventTypePaymentReconciled, w.refreshInvoices)
	w.Invoices.Notify(bus)
	w.Payments.Notify(bus)

	return w
}

// refreshPayments reloads payments after an invoice is generated, since
// the backend may have opened a payment for it.
func (w *Workspace) refreshPayments(ctx context.Context, _ events.Event) error {
	if w.Require(access.ActionViewPayments) != nil {
		return nil
	}
	return w.Payments.Fetch(ctx)
}

// refreshInvoices reloads invoices after a payment is reconciled so
// their status matches the backend.
func (w *Workspace) refreshInvoices(ctx context.Context, _ events.Event) error {
	if w.Require(access.ActionViewInvoices) != nil {
		return nil
	}
	return w.Invoices.Fetch(ctx)
}

// Role is the signed-in user's role.
func (w *Workspace) Role() (user.Role, bool) {
	u, ok := w.Auth.CurrentUser()
	if !ok {
		return "", false
	}
	return u.Role, true
}

// Require fails unless someone is signed in with a role allowed to
// perform action.
func (w *Workspace) Require(action access.Action) error {
	role, ok := w.Role()
	if !ok {
		return internal.ErrNotAuthenticated
	}
	if !access.Can(role, action) {
		w.logger.Info("action denied for role", "action", action, "role", role)
		return internal.ErrAccessDenied
	}
	return nil
}

// Navigation is the nav for the signed-in user; nobody signed in sees
// nothing.
func (w *Workspace) Navigation() []access.NavItem {
	role, ok := w.Role()
	if !ok {
		return []access.NavItem{}
	}
	return access.NavFor(role)
}

type DashboardView struct {
	User    user.User
	Summary analytics.Summary
	// AnalyticsRestricted is set when the backend refused the summary
	// for this role; the summary is then shown as an empty state.
	AnalyticsRestricted bool
	KPIs                insights.KPIs
	Flags               []insights.Flag
}

// LoadDashboard fetches the summary, the timesheets and (for roles that
// may see them) the invoices and payments at the same time. Each fetch lands in its
// own store whatever the others do; the returned error joins the
// failures other than a refused summary.
func (w *Workspace) LoadDashboard(ctx context.Context) (DashboardView, error) {
	u, ok := w.Auth.CurrentUser()
	if !ok {
		return DashboardView{}, internal.ErrNotAuthenticated
	}

	var (
		g    errgroup.Group
		errs [4]error
	)
	g.Go(func() error {
		errs[0] = w.Dashboard.FetchSummary(ctx)
		return nil
	})
	g.Go(func() error {
		errs[1] = w.Timesheets.Fetch(ctx)
		return nil
	})
	if access.Can(u.Role, access.ActionViewInvoices) {
		g.Go(func() error {
			errs[2] = w.Invoices.Fetch(ctx)
			return nil
		})
	}
	if access.Can(u.Role, access.ActionViewPayments) {
		g.Go(func() error {
			errs[3] = w.Payments.Fetch(ctx)
			return nil
		})
	}
	_ = g.Wait()

	view := DashboardView{User: u, Summary: w.Dashboard.Summary()}
	if errs[0] != nil && internal.IsAccessDenied(errs[0]) {
		w.logger.Debug("analytics not available for role", "role", u.Role)
		view.AnalyticsRestricted = true
		view.Summary = analytics.Summary{}
		w.Dashboard.ClearErrors()
		errs[0] = nil
	}

	entries := w.Timesheets.Entries()
	view.KPIs = insights.Summarize(entries, w.Invoices.Invoices(), w.Payments.Payments())
	view.Flags = insights.Flagged(entries)

	return view, errors.Join(errs[:]...)
}

// LoadAuditLogs fetches the current filter page of audit records. Roles
// other than Admin and Manager are refused before any request is made.
func (w *Workspace) LoadAuditLogs(ctx context.Context) (audit.Snapshot, error) {
	if err := w.requireAudit(access.ActionViewAuditLogs); err != nil {
		return audit.Snapshot{}, err
	}
	err := w.Audit.Fetch(ctx, w.Audit.Filters())
	return w.Audit.Snapshot(), err
}

// ExportAuditLogs is LoadAuditLogs' gate in front of an export.
func (w *Workspace) ExportAuditLogs(ctx context.Context, req audit.ExportRequest) (*audit.Export, error) {
	if err := w.requireAudit(access.ActionExportAuditLogs); err != nil {
		return nil, err
	}
	return w.Audit.Export(ctx, req)
}

func (w *Workspace) requireAudit(action access.Action) error {
	role, ok := w.Role()
	if !ok {
		return internal.ErrNotAuthenticated
	}
	if !access.Can(role, action) {
		w.logger.Info("audit logs refused for role", "role", role, "action", action)
		return internal.ErrAuditAccess
	}
	return nil
}
