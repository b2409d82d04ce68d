package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a contract summary: header, supplier and validity,
// deadlines, allocations and rate plans.
func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	c := doc.Contract
	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Supplier contract %s", c.ContractNumber)), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(c.Name), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	lines := []string{
		fmt.Sprintf("Supplier: %s", safeValue(c.SupplierName)),
		fmt.Sprintf("Type: %s    Status: %s", c.ContractType, c.Status),
		fmt.Sprintf("Valid: %s - %s", formatDate(c.ValidFrom), formatDate(c.ValidTo)),
		fmt.Sprintf("Currency: %s    Commission: %s%%", c.Currency, c.CommissionPercent.StringFixed(2)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	if strings.TrimSpace(c.Notes) != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, 5, tr("Notes: "+c.Notes), "", "L", false)
	}

	g.section(pdf, "Deadlines")
	deadlineWidths := []float64{90, 35, 35, 35, 30}
	drawTableRow(pdf, g.fontName, tr, []string{"Title", "Type", "Date", "Status", "Overdue"}, deadlineWidths, true)
	for _, d := range doc.Deadlines {
		overdue := ""
		if d.IsOverdue(doc.GeneratedAt) {
			overdue = "yes"
		}
		drawTableRow(pdf, g.fontName, tr, []string{
			d.Title, string(d.DeadlineType), formatDate(d.DeadlineDate), string(d.Status), overdue,
		}, deadlineWidths, false)
	}

	g.section(pdf, "Allocations")
	summary := inventory.Summarize(doc.Allocations)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Quantity %d, booked %d, held %d, available %d, utilization %.1f%%",
		summary.Quantity, summary.Booked, summary.Held, summary.Available, summary.Utilization)), "", 1, "L", false, 0, "")
	allocWidths := []float64{75, 30, 30, 25, 25, 25, 35}
	drawTableRow(pdf, g.fontName, tr, []string{"Product", "Start", "End", "Quantity", "Booked", "Held", "Status"}, allocWidths, true)
	for _, a := range doc.Allocations {
		v := inventory.NewView(a)
		quantity := "freesale"
		if a.Quantity != nil {
			quantity = fmt.Sprintf("%d", *a.Quantity)
		}
		drawTableRow(pdf, g.fontName, tr, []string{
			a.ProductName, formatDate(a.StartDate), formatDate(a.EndDate), quantity,
			fmt.Sprintf("%d", a.Booked), fmt.Sprintf("%d", a.Held), string(v.Status),
		}, allocWidths, false)
	}

	g.section(pdf, "Rate plans")
	rateWidths := []float64{60, 45, 30, 30, 30, 30, 40}
	drawTableRow(pdf, g.fontName, tr, []string{"Product", "Plan", "From", "To", "Cost", "Sell", "Margin, %"}, rateWidths, true)
	for _, r := range doc.Rates {
		drawTableRow(pdf, g.fontName, tr, []string{
			strings.TrimSpace(r.ProductName + " " + r.VariantName),
			r.RatePlanName,
			formatDate(r.ValidFrom),
			formatDate(r.ValidTo),
			r.CostPrice.StringFixed(2),
			r.SellPrice.StringFixed(2),
			r.MarginPercent().StringFixed(2),
		}, rateWidths, false)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", doc.GeneratedAt.Format("2006-01-02 15:04 MST")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 0 && !header {
			align = "C"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
