package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/access"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/invoice"
)

var (
	generateUserID      string
	generateClientName  string
	generateClientEmail string
	generateStartDate   string
	generateEndDate     string
	generateHourlyRate  string

	pdfOutput string
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List, generate and render invoices",
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionViewInvoices); err != nil {
			if denied(cmd.OutOrStdout(), err) {
				return nil
			}
			return err
		}
		if err := ws.Invoices.Fetch(cmd.Context()); err != nil {
			return failed(ws.Invoices.Snapshot().Status.Error, err)
		}

		snap := ws.Invoices.Snapshot()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), snap)
		}
		if len(snap.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No invoices yet.")
			return nil
		}
		tw := newTable(cmd.OutOrStdout(), "ID", "NUMBER", "CLIENT", "PERIOD", "HOURS", "AMOUNT", "STATUS")
		for _, inv := range snap.Items {
			p := inv.Billed()
			row(tw, inv.Key(), orDash(inv.InvoiceNumber), inv.ClientName,
				fmt.Sprintf("%s..%s", p.StartDate, p.EndDate), inv.TotalHours,
				inv.TotalAmount.StringFixed(2), inv.CurrentStatus())
		}
		return tw.Flush()
	}),
}

var invoicesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an invoice for a user's hours",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionGenerateInvoice); err != nil {
			return err
		}

		rate, err := decimal.NewFromString(generateHourlyRate)
		if err != nil {
			return internal.NewValidationFieldError("hourlyRate", "hourlyRate must be a number", internal.ErrCodeValidationFailed)
		}

		userID := generateUserID
		if userID == "" {
			users, err := ws.Invoices.Users(cmd.Context())
			if err != nil || len(users) == 0 {
				return internal.NewValidationFieldError("userId", "userId is required", internal.ErrCodeValidationFailed)
			}
			tw := newTable(cmd.ErrOrStderr(), "USER ID", "NAME", "EMAIL", "ROLE")
			for _, u := range users {
				row(tw, u.Key(), u.Name, orDash(u.Email), u.Role)
			}
			_ = tw.Flush()
			return internal.NewValidationFieldError("userId", "userId is required; pick one of the users above", internal.ErrCodeValidationFailed)
		}

		inv, err := ws.Invoices.Generate(cmd.Context(), invoice.GenerateRequest{
			UserID:      userID,
			ClientName:  generateClientName,
			ClientEmail: generateClientEmail,
			StartDate:   generateStartDate,
			EndDate:     generateEndDate,
			HourlyRate:  rate,
		})
		if err != nil {
			return failed(ws.Invoices.Snapshot().Op(invoice.OpGenerate).Error, err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), inv)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invoice generated successfully! %s total %s\n",
			orDash(inv.InvoiceNumber), inv.TotalAmount.StringFixed(2))
		for _, p := range ws.Payments.Payments() {
			if inv.Key() != "" && p.InvoiceID.Key() == inv.Key() {
				fmt.Fprintf(out, "Payment %s is %s for %s\n", p.Key(), p.CurrentStatus(), p.Amount.StringFixed(2))
				break
			}
		}
		return nil
	}),
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf <invoice-id>",
	Short: "Render an invoice to a PDF file",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionViewInvoices); err != nil {
			return err
		}
		if err := ws.Invoices.Fetch(cmd.Context()); err != nil {
			return failed(ws.Invoices.Snapshot().Status.Error, err)
		}
		inv, ok := state.Find(ws.Invoices.Invoices(), args[0])
		if !ok {
			return &internal.AppError{
				Type:    internal.ErrorTypeNotFound,
				Code:    "INVOICE_NOT_FOUND",
				Message: fmt.Sprintf("Invoice %s not found", args[0]),
			}
		}

		path := pdfOutput
		if path == "" {
			name := inv.InvoiceNumber
			if name == "" {
				name = inv.Key()
			}
			path = fmt.Sprintf("invoice-%s.pdf", name)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := invoice.RenderPDF(f, inv); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	}),
}

func init() {
	invoicesGenerateCmd.Flags().StringVar(&generateUserID, "user", "", "user to bill (omit to list known users)")
	invoicesGenerateCmd.Flags().StringVar(&generateClientName, "client-name", "", "client name")
	invoicesGenerateCmd.Flags().StringVar(&generateClientEmail, "client-email", "", "client email")
	invoicesGenerateCmd.Flags().StringVar(&generateStartDate, "start", "", "period start (YYYY-MM-DD)")
	invoicesGenerateCmd.Flags().StringVar(&generateEndDate, "end", "", "period end (YYYY-MM-DD)")
	invoicesGenerateCmd.Flags().StringVar(&generateHourlyRate, "rate", "0", "hourly rate")

	invoicesPDFCmd.Flags().StringVarP(&pdfOutput, "out", "o", "", "output file (default invoice-<number>.pdf)")

	invoicesCmd.AddCommand(invoicesListCmd, invoicesGenerateCmd, invoicesPDFCmd)
}
