package invoice

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	invoiceDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/invoice"
)

// RenderPDF writes a one-page summary of inv. Amounts are printed as the
// backend reported them.
func RenderPDF(w io.Writer, inv invoiceDatamodel.Invoice) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	title := "Invoice"
	if inv.InvoiceNumber != "" {
		title = "Invoice " + inv.InvoiceNumber
	}
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.CellFormat(45, 8, label, "", 0, "L", false, 0, "")
		pdf.Cell(0, 8, value)
		pdf.Ln(7)
	}

	line("Status:", string(inv.CurrentStatus()))
	if inv.UserID.Populated() {
		line("Employee:", inv.UserID.User.DisplayName())
	}
	line("Client:", inv.ClientName)
	line("Client email:", inv.ClientEmail)
	period := inv.Billed()
	line("Period:", fmt.Sprintf("%s to %s", period.StartDate, period.EndDate))
	if inv.DueDate != "" {
		line("Due:", inv.DueDate)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(60, 8, "Hours", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Rate", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Amount", "1", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(60, 8, fmt.Sprintf("%.2f", inv.TotalHours), "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, inv.HourlyRate.StringFixed(2), "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, inv.TotalAmount.StringFixed(2), "1", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return nil
}
