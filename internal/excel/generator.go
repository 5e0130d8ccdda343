package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

const summarySheet = "Summary"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the summary sheet of party rows followed by one sheet of
// trips per party, in row order.
func (g *Generator) Generate(report model.CostExport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, headerStyle, report); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{strings.ToLower(summarySheet): {}}
	for _, row := range report.Rows {
		trips := report.Trips[row.PartyID]
		if len(trips) == 0 {
			continue
		}
		sheetName := buildSheetName(row, usedNames)
		usedNames[strings.ToLower(sheetName)] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeTrips(file, sheetName, headerStyle, report, row, trips); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, headerStyle int, report model.CostExport) error {
	var totalTrips int64
	var costTotal, advanceTotal, remainingTotal float64
	for _, row := range report.Rows {
		totalTrips += row.TotalTrip
		costTotal += row.CostTotal
		advanceTotal += row.AdvanceTotal
		remainingTotal += row.RemainingTotal
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", kindLabel(report.Kind)+" costs")
	set("A2", "Period start")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Period end")
	set("B3", formatDate(report.PeriodEnd))
	set("A4", "Date basis")
	set("B4", string(report.DateBasis))
	set("A5", "Trips")
	set("B5", totalTrips)
	if report.Partial {
		set("A6", "Note")
		set("B6", "workflow boundaries incomplete, windows are approximate")
	}

	tableRow := 8
	headers := []string{"Code", "Name", "Trips", "Cost", "Advances", "Remaining"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}
	_ = file.SetCellStyle(sheet, fmt.Sprintf("A%d", tableRow), fmt.Sprintf("F%d", tableRow), headerStyle)

	for i, row := range report.Rows {
		r := tableRow + 1 + i
		set(fmt.Sprintf("A%d", r), row.Code)
		set(fmt.Sprintf("B%d", r), row.Name)
		set(fmt.Sprintf("C%d", r), row.TotalTrip)
		set(fmt.Sprintf("D%d", r), row.CostTotal)
		set(fmt.Sprintf("E%d", r), row.AdvanceTotal)
		set(fmt.Sprintf("F%d", r), row.RemainingTotal)
	}

	totalRow := tableRow + 1 + len(report.Rows)
	set(fmt.Sprintf("A%d", totalRow), "Total")
	set(fmt.Sprintf("C%d", totalRow), totalTrips)
	set(fmt.Sprintf("D%d", totalRow), costTotal)
	set(fmt.Sprintf("E%d", totalRow), advanceTotal)
	set(fmt.Sprintf("F%d", totalRow), remainingTotal)
	_ = file.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("F%d", totalRow), headerStyle)

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "F", 14)
	return nil
}

func (g *Generator) writeTrips(
	file *excelize.File,
	sheet string,
	headerStyle int,
	report model.CostExport,
	row model.PartyCostRow,
	trips []model.ResolvedTrip,
) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", kindLabel(report.Kind))
	set("B1", strings.TrimSpace(row.Code+" "+row.Name))
	set("A2", "Period")
	set("B2", formatDate(report.PeriodStart)+" - "+formatDate(report.PeriodEnd))
	set("A3", "Trips")
	set("B3", row.TotalTrip)
	set("A4", "Cost")
	set("B4", row.CostTotal)

	tableRow := 6
	headers := []string{
		"Trip",
		"Order",
		"Status",
		"Pickup date",
		"Delivery date",
		"Start",
		"End",
		"Cost",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}
	_ = file.SetCellStyle(sheet, fmt.Sprintf("A%d", tableRow), fmt.Sprintf("H%d", tableRow), headerStyle)

	for i, trip := range trips {
		r := tableRow + 1 + i
		set(fmt.Sprintf("A%d", r), trip.TripCode)
		set(fmt.Sprintf("B%d", r), trip.OrderCode)
		set(fmt.Sprintf("C%d", r), string(trip.LatestStatus))
		set(fmt.Sprintf("D%d", r), formatDatePtr(trip.PickupDate))
		set(fmt.Sprintf("E%d", r), formatDatePtr(trip.DeliveryDate))
		set(fmt.Sprintf("F%d", r), formatDateTimePtr(trip.StartDate))
		set(fmt.Sprintf("G%d", r), formatDateTimePtr(trip.EndDate))
		set(fmt.Sprintf("H%d", r), trip.Cost)
	}

	_ = file.SetColWidth(sheet, "A", "C", 18)
	_ = file.SetColWidth(sheet, "D", "E", 14)
	_ = file.SetColWidth(sheet, "F", "G", 20)
	_ = file.SetColWidth(sheet, "H", "H", 14)
	return nil
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

// buildSheetName returns a unique sheet title of at most 31 characters.
// Excel compares sheet names case-insensitively, so used is keyed by the
// lower-cased title.
func buildSheetName(row model.PartyCostRow, used map[string]struct{}) string {
	base := strings.TrimSpace(row.Code)
	if name := strings.TrimSpace(row.Name); name != "" {
		base = strings.TrimSpace(base + " " + name)
	}
	if base == "" {
		base = fmt.Sprintf("Party %d", row.PartyID)
	}
	base = truncate(sanitizeSheetName(base), 31)

	candidate := base
	for counter := 2; ; counter++ {
		if _, exists := used[strings.ToLower(candidate)]; !exists {
			return candidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		candidate = truncate(base, 31-len([]rune(suffix))) + suffix
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
		"'", "",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Sheet"
	}
	return value
}

// truncate cuts by characters so multi-byte names stay valid.
func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatDateTimePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
