/*
Package report renders leave summaries as printable documents.

PURPOSE:
  HR offices attach a balance sheet to the yearly review packet. This
  package renders the per-employee summary projection as a one-page PDF.

SEE ALSO:
  - leave/stats.go: The Summary projection being rendered
  - api/handlers.go: GetSummaryPDF endpoint
*/
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/warp/leave-ledger/leave"
)

// WriteSummaryPDF renders a one-page balance sheet for the summary to w.
func WriteSummaryPDF(w io.Writer, s leave.Summary, asOf time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Balance Summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", s.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s", s.Department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("As of: %s", asOf.Format("2006-01-02")))
	pdf.Ln(10)

	if s.Probationary {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Status: Probationary (no yearly allowance yet)")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Days used: %s", s.UsedDays.String()))
		pdf.Ln(7)
	} else {
		pdf.Cell(0, 8, fmt.Sprintf("Current allowance: %s", s.CurrentAllowance.String()))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Days used: %s", s.UsedDays.String()))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Days remaining: %s", s.RemainingDays.String()))
		pdf.Ln(7)
	}

	pdf.Cell(0, 8, fmt.Sprintf("Next renewal: %s", s.NextRenewalDate.Format("2006-01-02")))

	return pdf.Output(w)
}
