package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal/access"
	paymentDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/payment"
	"github.com/ashraf950/timesheet-client/internal/payment"
)

var (
	reconcileDate          string
	reconcileMethod        string
	reconcileTransactionID string
	reconcileNotes         string
	showSuggestions        bool
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "List and reconcile payments",
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionViewPayments); err != nil {
			if denied(cmd.OutOrStdout(), err) {
				return nil
			}
			return err
		}
		if err := ws.Payments.Fetch(cmd.Context()); err != nil {
			return failed(ws.Payments.Snapshot().Status.Error, err)
		}

		snap := ws.Payments.Snapshot()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), snap)
		}
		out := cmd.OutOrStdout()
		if snap.Summary != nil {
			fmt.Fprintf(out, "Paid %s  Pending %s  Overdue %s\n\n",
				snap.Summary.TotalPaid.StringFixed(2),
				snap.Summary.TotalPending.StringFixed(2),
				snap.Summary.TotalOverdue.StringFixed(2))
		}
		if len(snap.Items) == 0 {
			fmt.Fprintln(out, "No payments yet.")
			return nil
		}
		tw := newTable(out, "ID", "INVOICE", "AMOUNT", "DUE", "STATUS", "METHOD", "REFERENCE")
		for _, p := range snap.Items {
			invoiceLabel := p.InvoiceID.InvoiceNumber
			if invoiceLabel == "" {
				invoiceLabel = p.InvoiceID.Key()
			}
			row(tw, p.Key(), orDash(invoiceLabel), p.Amount.StringFixed(2), orDash(p.DueDate),
				p.CurrentStatus(), orDash(string(p.PaymentMethod)), orDash(p.TransactionID))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if showSuggestions {
			fmt.Fprintln(out)
			for _, p := range snap.Items {
				if p.CurrentStatus() == paymentDatamodel.StatusPaid {
					continue
				}
				s := ws.Presenter.SuggestMatch()
				fmt.Fprintf(out, "%s: %s %s (%d%% match) %s\n", p.Key(), s.PaymentMethod, s.TransactionID, s.Confidence, s.Notes)
			}
		}
		if snap.Pagination != nil {
			fmt.Fprintf(out, "\nPage %d of %d (%d payments)\n", snap.Pagination.Page, snap.Pagination.Pages, snap.Pagination.Total)
		}
		return nil
	}),
}

var paymentsReconcileCmd = &cobra.Command{
	Use:   "reconcile <payment-id>",
	Short: "Mark a payment as received",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionReconcilePayment); err != nil {
			return err
		}
		req := payment.ReconcileRequest{
			PaymentID:     args[0],
			PaymentDate:   reconcileDate,
			PaymentMethod: paymentDatamodel.Method(reconcileMethod),
			TransactionID: reconcileTransactionID,
			Notes:         reconcileNotes,
		}
		// Check locally before loading anything.
		if appErr := req.Validate(); appErr != nil {
			return appErr
		}
		if err := ws.Payments.Fetch(cmd.Context()); err != nil {
			return failed(ws.Payments.Snapshot().Status.Error, err)
		}
		p, err := ws.Payments.Reconcile(cmd.Context(), req)
		if err != nil {
			return failed(ws.Payments.Snapshot().Op(payment.OpReconcile).Error, err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), p)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Payment %s reconciled (%s)\n", p.Key(), p.CurrentStatus())
		return nil
	}),
}

func init() {
	paymentsListCmd.Flags().BoolVar(&showSuggestions, "suggest", false, "show a match suggestion for each unpaid payment")

	paymentsReconcileCmd.Flags().StringVar(&reconcileDate, "date", "", "date received (YYYY-MM-DD)")
	paymentsReconcileCmd.Flags().StringVar(&reconcileMethod, "method", "", "Bank Transfer, Credit Card, PayPal, Check, Cash or Other")
	paymentsReconcileCmd.Flags().StringVar(&reconcileTransactionID, "reference", "", "transaction reference")
	paymentsReconcileCmd.Flags().StringVar(&reconcileNotes, "notes", "", "free-form notes")

	paymentsCmd.AddCommand(paymentsListCmd, paymentsReconcileCmd)
}
