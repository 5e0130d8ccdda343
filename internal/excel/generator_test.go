package excel

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

func sampleExport() model.CostExport {
	party := int64(11)
	start := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	return model.CostExport{
		Kind:        model.PartySubcontractor,
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		DateBasis:   model.DateBasisStatusCreatedAt,
		Rows: []model.PartyCostRow{
			{PartyID: 11, Code: "SC-01", Name: "Sub One", TotalTrip: 1, CostTotal: 100, AdvanceTotal: 40, RemainingTotal: 60},
			{PartyID: 12, Code: "SC-02", Name: "Sub Two", AdvanceTotal: 500, RemainingTotal: -500},
		},
		Trips: map[int64][]model.ResolvedTrip{
			11: {{TripID: 1, TripCode: "TR-1", OrderCode: "OR-1", PartyID: &party, Cost: 100, LatestStatus: model.DriverReportInTransit, StartDate: &start}},
		},
	}
}

func TestGenerateWritesSummaryAndPartySheets(t *testing.T) {
	content, err := NewGenerator().Generate(sampleExport())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) != 2 || sheets[0] != summarySheet || sheets[1] != "SC-01 Sub One" {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	if got, _ := file.GetCellValue(summarySheet, "A9"); got != "SC-01" {
		t.Fatalf("first summary row = %q", got)
	}
	if got, _ := file.GetCellValue(summarySheet, "F10"); got != "-500" {
		t.Fatalf("remaining of second row = %q", got)
	}
	if got, _ := file.GetCellValue(summarySheet, "E11"); got != "540" {
		t.Fatalf("advance total = %q", got)
	}
	if got, _ := file.GetCellValue("SC-01 Sub One", "F7"); got != "2024-03-02 08:00:00" {
		t.Fatalf("trip start = %q", got)
	}
}

func TestBuildSheetNameIsUniqueAndShort(t *testing.T) {
	used := map[string]struct{}{}
	row := model.PartyCostRow{PartyID: 3, Code: "C/1", Name: strings.Repeat("Long name ", 5)}

	first := buildSheetName(row, used)
	used[strings.ToLower(first)] = struct{}{}
	second := buildSheetName(row, used)

	if first == second {
		t.Fatalf("expected unique names, got %q twice", first)
	}
	if len([]rune(first)) > 31 || len([]rune(second)) > 31 {
		t.Fatalf("names too long: %q %q", first, second)
	}
	if strings.Contains(first, "/") {
		t.Fatalf("unsanitized name %q", first)
	}
	if !strings.HasSuffix(second, "-2") {
		t.Fatalf("expected counter suffix, got %q", second)
	}

	if got := buildSheetName(model.PartyCostRow{PartyID: 9}, used); got != "Party 9" {
		t.Fatalf("fallback name = %q", got)
	}
}

func TestGenerateKeepsSheetsDistinctIgnoringCase(t *testing.T) {
	report := model.CostExport{
		Kind: model.PartySubcontractor,
		Rows: []model.PartyCostRow{
			{PartyID: 1, Code: "abc", TotalTrip: 1, CostTotal: 10},
			{PartyID: 2, Code: "ABC", TotalTrip: 1, CostTotal: 20},
			{PartyID: 3, Name: "summary", TotalTrip: 1, CostTotal: 30},
		},
		Trips: map[int64][]model.ResolvedTrip{
			1: {{TripID: 101, TripCode: "TR-101", Cost: 10}},
			2: {{TripID: 102, TripCode: "TR-102", Cost: 20}},
			3: {{TripID: 103, TripCode: "TR-103", Cost: 30}},
		},
	}
	content, err := NewGenerator().Generate(report)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	want := []string{summarySheet, "abc", "ABC-2", "summary-2"}
	if len(sheets) != len(want) {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("sheet %d = %q, want %q (all %v)", i, sheets[i], want[i], sheets)
		}
	}

	if got, _ := file.GetCellValue(summarySheet, "A9"); got != "abc" {
		t.Fatalf("summary rows overwritten, first row = %q", got)
	}
	if got, _ := file.GetCellValue(summarySheet, "B11"); got != "summary" {
		t.Fatalf("summary third row name = %q", got)
	}
	if got, _ := file.GetCellValue(summarySheet, "A1"); got != "Report" {
		t.Fatalf("summary header overwritten: %q", got)
	}
	summaryRows, _ := file.GetRows(summarySheet)
	if sheetContains(summaryRows, "TR-103") {
		t.Fatalf("party trips written into the summary sheet: %v", summaryRows)
	}
	for name, code := range map[string]string{"abc": "TR-101", "ABC-2": "TR-102", "summary-2": "TR-103"} {
		rows, err := file.GetRows(name)
		if err != nil {
			t.Fatalf("rows of %s: %v", name, err)
		}
		if !sheetContains(rows, code) {
			t.Fatalf("sheet %s misses trip %s: %v", name, code, rows)
		}
	}
}

func sheetContains(rows [][]string, value string) bool {
	for _, row := range rows {
		for _, cell := range row {
			if cell == value {
				return true
			}
		}
	}
	return false
}
