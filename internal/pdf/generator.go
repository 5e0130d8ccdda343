package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a landscape table of party rows with grand totals.
func (g *Generator) Generate(report model.CostExport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headers := []string{"Code", "Name", "Trips", "Cost", "Advances", "Remaining"}
	colWidths := []float64{35, 97, 25, 40, 35, 35}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			drawTableRow(pdf, g.fontName, headers, colWidths, true)
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(kindLabel(report.Kind)+" cost report"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Date basis: "+string(report.DateBasis), "", 1, "C", false, 0, "")
	if report.Partial {
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 6, "Workflow boundaries are incomplete for this organization; trip windows are approximate.", "", "C", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	var totalTrips int64
	var costTotal, advanceTotal, remainingTotal float64
	for _, row := range report.Rows {
		drawTableRow(pdf, g.fontName, []string{
			tr(safeValue(row.Code)),
			tr(safeValue(row.Name)),
			fmt.Sprintf("%d", row.TotalTrip),
			formatAmount(row.CostTotal),
			formatAmount(row.AdvanceTotal),
			formatAmount(row.RemainingTotal),
		}, colWidths, false)
		totalTrips += row.TotalTrip
		costTotal += row.CostTotal
		advanceTotal += row.AdvanceTotal
		remainingTotal += row.RemainingTotal
	}

	drawTableRow(pdf, g.fontName, []string{
		"Total",
		fmt.Sprintf("%d parties", len(report.Rows)),
		fmt.Sprintf("%d", totalTrips),
		formatAmount(costTotal),
		formatAmount(advanceTotal),
		formatAmount(remainingTotal),
	}, colWidths, true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, fitText(pdf, col, widths[i]-2), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// fitText shortens value until it fits width at the current font.
func fitText(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width {
		return value
	}
	for len(value) > 0 && pdf.GetStringWidth(value+"...") > width {
		value = value[:len(value)-1]
	}
	return value + "..."
}

func kindLabel(kind model.PartyKind) string {
	switch kind {
	case model.PartyDriver:
		return "Driver"
	case model.PartyCustomer:
		return "Customer"
	default:
		return "Subcontractor"
	}
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
