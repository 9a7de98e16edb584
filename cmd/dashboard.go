package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/access"
	"github.com/ashraf950/timesheet-client/internal/dashboard"
)

var withMetrics bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the KPI summary",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		view, loadErr := ws.LoadDashboard(cmd.Context())
		if errors.Is(loadErr, internal.ErrNotAuthenticated) {
			return loadErr
		}

		if withMetrics && access.Can(view.User.Role, access.ActionViewAnalytics) {
			if err := ws.Dashboard.FetchAdvancedMetrics(cmd.Context()); err != nil {
				deps.Logger.Warn("advanced metrics unavailable", "error", err)
			}
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), struct {
				View    any `json:"view"`
				Metrics any `json:"advancedMetrics"`
			}{view, ws.Dashboard.Snapshot().Metrics}); err != nil {
				return err
			}
			return loadErr
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Welcome back, %s!\n\n", view.User.DisplayName())

		if view.AnalyticsRestricted {
			fmt.Fprintln(out, "Analytics are not available for your role.")
		} else {
			s := view.Summary
			tw := newTable(out, "KPI", "VALUE")
			row(tw, "Total Hours Logged", fmt.Sprintf("%g hrs", s.TotalHours))
			row(tw, "Pending Approvals", fmt.Sprintf("%d items", s.PendingApprovals))
			row(tw, "Approved Invoices", fmt.Sprintf("%d invoices", s.ApprovedInvoices))
			row(tw, "Payments Collected", "$"+s.PaymentsCollected.StringFixed(2))
			if err := tw.Flush(); err != nil {
				return err
			}
		}

		k := view.KPIs
		fmt.Fprintf(out, "\nYour entries: %d (%g hrs) - %d pending, %d approved, %d rejected\n",
			k.Entries, k.TotalHours, k.Pending, k.Approved, k.Rejected)
		if k.InvoiceCount > 0 {
			fmt.Fprintf(out, "Invoices: %d, outstanding %s\n", k.InvoiceCount, k.OutstandingAmount.StringFixed(2))
		}
		if access.Can(view.User.Role, access.ActionViewPayments) {
			fmt.Fprintf(out, "Payments: collected %s, %d pending\n", k.PaymentsCollected.StringFixed(2), k.PaymentsPending)
		}
		for _, f := range view.Flags {
			fmt.Fprintf(out, "  %s: %s %s %.2fh\n", f.Label, f.Entry.Date, f.Entry.Project, f.Entry.HoursWorked)
		}

		if withMetrics {
			snap := ws.Dashboard.Snapshot()
			if e := snap.Op(dashboard.OpMetrics).Error; e != nil {
				fmt.Fprintln(out, "\nAdvanced metrics:", e.Message)
			} else if m := snap.Metrics; m.DSO != nil {
				fmt.Fprintf(out, "\nDSO: %g (%s)\n", m.DSO.Value, m.DSO.Description)
			}
		}

		if e := ws.Dashboard.Snapshot().Status.Error; e != nil {
			return failed(e, loadErr)
		}
		return loadErr
	}),
}

func init() {
	dashboardCmd.Flags().BoolVar(&withMetrics, "metrics", false, "also load advanced metrics")
}
