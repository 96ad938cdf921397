// Package pdf renders a loan's installment schedule into a printable,
// paginated A4 document.
package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/andescredit/loan-engine/internal/domain"
	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/pkg/utils"
)

const (
	pageMargin = 40.0
	rowHeight  = 18.0
)

type column struct {
	title string
	width float64
	align string
}

// ScheduleRenderer lays a (client, loan, schedule) view out as a fixed-width
// six-column table. The header block is drawn once on the first page; the
// column header row is redrawn at the top of every page.
type ScheduleRenderer struct {
	currencyPrefix string
}

func NewScheduleRenderer(currencyPrefix string) *ScheduleRenderer {
	return &ScheduleRenderer{currencyPrefix: currencyPrefix}
}

// Render writes the document to w. Single pass over the schedule; the only
// state is the vertical cursor.
func (r *ScheduleRenderer) Render(w io.Writer, doc *domain.ScheduleDocument) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin
	bottom := pageHeight - pageMargin

	// Column widths are absolute; the last column takes the remainder so the
	// table fills the content width exactly.
	columns := []column{
		{title: "Cuota", width: 50, align: "L"},
		{title: "Fecha", width: 90, align: "L"},
		{title: fmt.Sprintf("Cuota (%s)", r.currencyPrefix), width: 95, align: "R"},
		{title: tr("Interés"), width: 90, align: "R"},
		{title: "Capital", width: 90, align: "R"},
		{title: "Saldo", width: contentWidth - (50 + 90 + 95 + 90 + 90), align: "R"},
	}

	totalToPay := decimal.Zero
	for _, row := range doc.Schedule {
		totalToPay = totalToPay.Add(row.InstallmentAmount)
	}

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(contentWidth, 20, "Cronograma de Pagos", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	ratePercent := doc.Loan.InterestRate.Mul(decimal.NewFromInt(100))
	headerLines := []string{
		fmt.Sprintf("Cliente: %s %s (DNI: %s)", doc.Client.FirstName, doc.Client.LastName, doc.Client.DNI),
		tr(fmt.Sprintf("Préstamo: Monto %s | Tasa anual %s%% | Plazo %d meses",
			utils.FormatAmount(r.currencyPrefix, doc.Loan.Principal), ratePercent.StringFixed(2), doc.Loan.TermCount)),
		fmt.Sprintf("Total a pagar: %s", utils.FormatAmount(r.currencyPrefix, totalToPay)),
		fmt.Sprintf("Fecha de inicio: %s", utils.FormatDate(doc.Loan.StartDate)),
	}
	for _, line := range headerLines {
		pdf.CellFormat(contentWidth, 13, line, "", 1, "L", false, 0, "")
	}

	y := pdf.GetY() + 6
	drawColumnHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		x := pageMargin
		for _, col := range columns {
			pdf.SetXY(x, y)
			pdf.CellFormat(col.width, rowHeight, col.title, "", 0, col.align, false, 0, "")
			x += col.width
		}
		y += rowHeight - 6
		pdf.Line(pageMargin, y, pageMargin+contentWidth, y)
		y += 6
		pdf.SetFont("Helvetica", "", 10)
	}

	drawRow := func(row *domain.Installment) {
		cells := []string{
			fmt.Sprintf("%d", row.InstallmentNumber),
			utils.FormatDate(row.DueDate),
			utils.FormatAmount(r.currencyPrefix, row.InstallmentAmount),
			utils.FormatAmount(r.currencyPrefix, row.InterestAmount),
			utils.FormatAmount(r.currencyPrefix, row.PrincipalAmount),
			utils.FormatAmount(r.currencyPrefix, row.RemainingBalance),
		}
		x := pageMargin
		for i, cell := range cells {
			pdf.SetXY(x, y)
			pdf.CellFormat(columns[i].width, rowHeight, cell, "", 0, columns[i].align, false, 0, "")
			x += columns[i].width
		}
		y += rowHeight
	}

	drawColumnHeader()
	for _, row := range doc.Schedule {
		if y+rowHeight > bottom {
			pdf.AddPage()
			y = pageMargin
			drawColumnHeader()
		}
		drawRow(row)
	}

	if err := pdf.Output(w); err != nil {
		return customError.WrapRenderError(err)
	}
	return nil
}
