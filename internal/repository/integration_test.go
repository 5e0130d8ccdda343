package repository

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nurpe/freight-cost-reports/internal/costing"
	"github.com/nurpe/freight-cost-reports/internal/model"
)

var testSchema = []string{
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		code TEXT,
		customer_id BIGINT,
		last_status_type TEXT,
		published_at TIMESTAMP
	)`,
	`CREATE TABLE vehicles (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		plate_number TEXT,
		subcontractor_id BIGINT
	)`,
	`CREATE TABLE trips (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		order_id BIGINT NOT NULL,
		code TEXT,
		vehicle_id BIGINT,
		driver_id BIGINT,
		pickup_date TIMESTAMP,
		delivery_date TIMESTAMP,
		subcontractor_cost REAL,
		driver_cost REAL,
		customer_cost REAL,
		published_at TIMESTAMP
	)`,
	`CREATE TABLE driver_reports (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		name TEXT,
		type TEXT,
		display_order INTEGER
	)`,
	`CREATE TABLE trip_statuses (
		id INTEGER PRIMARY KEY,
		trip_id BIGINT NOT NULL,
		driver_report_id BIGINT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE bank_accounts (
		id INTEGER PRIMARY KEY,
		account_number TEXT,
		holder_name TEXT,
		bank_name TEXT,
		bank_branch TEXT
	)`,
	`CREATE TABLE subcontractors (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		code TEXT,
		name TEXT,
		phone TEXT,
		email TEXT,
		address TEXT,
		tax_code TEXT,
		bank_account_id BIGINT
	)`,
	`CREATE TABLE drivers (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		code TEXT,
		first_name TEXT,
		last_name TEXT,
		phone TEXT,
		email TEXT,
		address TEXT
	)`,
	`CREATE TABLE customers (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		code TEXT,
		name TEXT,
		phone TEXT,
		email TEXT,
		address TEXT,
		tax_code TEXT
	)`,
	`CREATE TABLE advances (
		id INTEGER PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		amount REAL NOT NULL,
		payment_date TIMESTAMP NOT NULL,
		subcontractor_id BIGINT,
		driver_id BIGINT,
		customer_id BIGINT
	)`,
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func exec(t *testing.T, db *gorm.DB, sql string, args ...interface{}) {
	t.Helper()
	if err := db.Exec(sql, args...).Error; err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedFreight creates org 1 with subcontractor 11 (two published trips),
// plus trips that must be filtered out.
func seedFreight(t *testing.T, db *gorm.DB) {
	t.Helper()
	published := utc(2024, 1, 1)

	exec(t, db, `INSERT INTO bank_accounts (id, account_number, holder_name, bank_name, bank_branch) VALUES (1, '0011', 'Sub One', 'First Bank', 'Central')`)
	exec(t, db, `INSERT INTO subcontractors (id, organization_id, code, name, phone, bank_account_id) VALUES (11, 1, 'SC-01', 'Sub One', '555-01', 1)`)
	exec(t, db, `INSERT INTO subcontractors (id, organization_id, code, name) VALUES (12, 1, 'SC-02', 'Sub Two')`)
	exec(t, db, `INSERT INTO drivers (id, organization_id, code, first_name, last_name) VALUES (21, 1, 'DR-01', 'Ann', 'Lee')`)
	exec(t, db, `INSERT INTO customers (id, organization_id, code, name, tax_code) VALUES (31, 1, 'CU-01', 'Acme', 'TX-1')`)

	exec(t, db, `INSERT INTO vehicles (id, organization_id, plate_number, subcontractor_id) VALUES (1, 1, 'AB-1', 11)`)
	exec(t, db, `INSERT INTO vehicles (id, organization_id, plate_number, subcontractor_id) VALUES (2, 1, 'AB-2', NULL)`)

	exec(t, db, `INSERT INTO orders (id, organization_id, code, customer_id, last_status_type, published_at) VALUES (1, 1, 'OR-1', 31, 'IN_PROGRESS', ?)`, published)
	exec(t, db, `INSERT INTO orders (id, organization_id, code, customer_id, last_status_type, published_at) VALUES (2, 1, 'OR-2', 31, 'CANCELED', ?)`, published)
	exec(t, db, `INSERT INTO orders (id, organization_id, code, customer_id, last_status_type, published_at) VALUES (3, 1, 'OR-3', 31, NULL, ?)`, published)

	trip := `INSERT INTO trips (id, organization_id, order_id, code, vehicle_id, driver_id, pickup_date, delivery_date, subcontractor_cost, driver_cost, customer_cost, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	exec(t, db, trip, 1, 1, 1, "TR-1", 1, 21, utc(2024, 3, 1), utc(2024, 3, 3), 100.0, 40.0, 300.0, published)
	exec(t, db, trip, 2, 1, 3, "TR-2", 1, 21, utc(2024, 3, 20), utc(2024, 3, 22), 50.0, 20.0, 200.0, published)
	// canceled order
	exec(t, db, trip, 3, 1, 2, "TR-3", 1, 21, utc(2024, 3, 1), utc(2024, 3, 3), 999.0, 999.0, 999.0, published)
	// unpublished trip
	exec(t, db, trip, 4, 1, 1, "TR-4", 1, 21, utc(2024, 3, 1), utc(2024, 3, 3), 999.0, 999.0, 999.0, nil)
	// vehicle without subcontractor
	exec(t, db, trip, 5, 1, 1, "TR-5", 2, 21, utc(2024, 3, 1), utc(2024, 3, 3), 999.0, 5.0, 7.0, published)
	// other organization
	exec(t, db, trip, 6, 2, 1, "TR-6", 1, 21, utc(2024, 3, 1), utc(2024, 3, 3), 999.0, 999.0, 999.0, published)

	exec(t, db, `INSERT INTO driver_reports (id, organization_id, name, type, display_order) VALUES (1, 1, 'Waiting', 'WAITING_FOR_PICKUP', 2)`)
	exec(t, db, `INSERT INTO driver_reports (id, organization_id, name, type, display_order) VALUES (2, 1, 'Transit', 'IN_TRANSIT', 3)`)
	exec(t, db, `INSERT INTO driver_reports (id, organization_id, name, type, display_order) VALUES (3, 1, 'Delivered', 'DELIVERED', 4)`)
	exec(t, db, `INSERT INTO driver_reports (id, organization_id, name, type, display_order) VALUES (4, 2, 'Delivered', 'DELIVERED', 9)`)

	status := `INSERT INTO trip_statuses (id, trip_id, driver_report_id, created_at) VALUES (?, ?, ?, ?)`
	exec(t, db, status, 1, 1, 1, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC))
	exec(t, db, status, 2, 1, 3, time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC))
	exec(t, db, status, 3, 2, 2, time.Date(2024, 3, 21, 8, 0, 0, 0, time.UTC))

	advance := `INSERT INTO advances (id, organization_id, type, status, amount, payment_date, subcontractor_id, driver_id, customer_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	exec(t, db, advance, 1, 1, "SUBCONTRACTOR", "PAYMENT", 200.0, utc(2024, 3, 10), 11, nil, nil)
	exec(t, db, advance, 2, 1, "SUBCONTRACTOR", "PAYMENT", 500.0, utc(2024, 3, 12), 12, nil, nil)
	exec(t, db, advance, 3, 1, "SUBCONTRACTOR", "PENDING", 700.0, utc(2024, 3, 12), 12, nil, nil)
	exec(t, db, advance, 4, 1, "SUBCONTRACTOR", "PAYMENT", 900.0, utc(2024, 4, 2), 12, nil, nil)
	exec(t, db, advance, 5, 1, "DRIVER", "PAYMENT", 15.0, utc(2024, 3, 10), nil, 21, nil)
}

func marchRange() model.DateRange {
	return model.DateRange{From: utc(2024, 3, 1), To: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)}
}

func TestSQLite_ListTripCandidatesSubcontractor(t *testing.T) {
	db := setupSQLiteDB(t)
	seedFreight(t, db)
	repo := NewReportRepository(db, 1)

	got, err := repo.ListTripCandidates(context.Background(), model.TripQuery{
		Kind:           model.PartySubcontractor,
		OrganizationID: 1,
	})
	if err != nil {
		t.Fatalf("ListTripCandidates: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected trips 1 and 2, got %+v", got)
	}
	if got[0].PartyID == nil || *got[0].PartyID != 11 || got[0].Cost != 100 {
		t.Fatalf("trip 1 attribution = %+v", got[0])
	}
	if got[0].OrderCode != "OR-1" || got[1].OrderCode != "OR-3" {
		t.Fatalf("order codes = %q %q", got[0].OrderCode, got[1].OrderCode)
	}
	if len(got[0].Statuses) != 2 || got[0].Statuses[1].Type != model.DriverReportDelivered {
		t.Fatalf("trip 1 history = %+v", got[0].Statuses)
	}
	if got[0].Statuses[1].DisplayOrder == nil || *got[0].Statuses[1].DisplayOrder != 4 {
		t.Fatalf("display order not loaded: %+v", got[0].Statuses[1])
	}
	if got[0].PickupDate == nil || !got[0].PickupDate.Equal(utc(2024, 3, 1)) {
		t.Fatalf("pickup date = %v", got[0].PickupDate)
	}
}

func TestSQLite_ListTripCandidatesPickupPreFilter(t *testing.T) {
	db := setupSQLiteDB(t)
	seedFreight(t, db)
	repo := NewReportRepository(db, 0)

	got, err := repo.ListTripCandidates(context.Background(), model.TripQuery{
		Kind:           model.PartySubcontractor,
		OrganizationID: 1,
		DateField:      model.TripDatePickup,
		Range:          model.DateRange{From: utc(2024, 3, 15), To: utc(2024, 3, 31)},
	})
	if err != nil {
		t.Fatalf("ListTripCandidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only trip 2, got %+v", got)
	}
}

func TestSQLite_StartCandidatesSkipOldTripsWithSameTotals(t *testing.T) {
	db := setupSQLiteDB(t)
	seedFreight(t, db)
	published := utc(2019, 1, 1)
	trip := `INSERT INTO trips (id, organization_id, order_id, code, vehicle_id, driver_id, pickup_date, delivery_date, subcontractor_cost, driver_cost, customer_cost, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	status := `INSERT INTO trip_statuses (id, trip_id, driver_report_id, created_at) VALUES (?, ?, ?, ?)`
	exec(t, db, trip, 100, 1, 1, "TR-100", 1, 21, utc(2019, 5, 1), utc(2019, 5, 3), 70.0, 1.0, 1.0, published)
	exec(t, db, status, 100, 100, 3, utc(2019, 5, 3))
	exec(t, db, trip, 101, 1, 3, "TR-101", 1, 21, utc(2019, 6, 1), nil, 80.0, 1.0, 1.0, published)
	exec(t, db, status, 101, 101, 1, utc(2019, 6, 2))
	// picked up long ago but moved during the range
	exec(t, db, trip, 102, 1, 3, "TR-102", 1, 21, utc(2019, 12, 30), nil, 30.0, 1.0, 1.0, published)
	exec(t, db, status, 102, 102, 2, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))

	repo := NewReportRepository(db, 0)
	ctx := context.Background()
	bounds, err := repo.GetWorkflowBoundaries(ctx, 1)
	if err != nil {
		t.Fatalf("GetWorkflowBoundaries: %v", err)
	}

	strategy := costing.StrategyFor(model.DateBasisStatusCreatedAt)
	rng := marchRange()
	steps := []int64{1, 2, 3}

	narrowed, err := repo.ListTripCandidates(ctx, strategy.TripQuery(model.PartySubcontractor, 1, nil, rng))
	if err != nil {
		t.Fatalf("narrowed candidates: %v", err)
	}
	var ids []int64
	for _, c := range narrowed {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []int64{1, 2, 102}) {
		t.Fatalf("narrowed trips = %v", ids)
	}

	all, err := repo.ListTripCandidates(ctx, model.TripQuery{Kind: model.PartySubcontractor, OrganizationID: 1})
	if err != nil {
		t.Fatalf("all candidates: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 unfiltered trips, got %d", len(all))
	}

	want := costing.AggregateCosts(strategy.Apply(costing.ResolveWindows(all, bounds, steps), rng))
	got := costing.AggregateCosts(strategy.Apply(costing.ResolveWindows(narrowed, bounds, steps), rng))
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("totals changed: got %+v, want %+v", got, want)
	}
	if len(got) != 1 || got[0].PartyID != 11 || got[0].TripCount < 2 {
		t.Fatalf("unexpected totals %+v", got)
	}
}

func TestSQLite_ListTripCandidatesDriverAndCustomer(t *testing.T) {
	db := setupSQLiteDB(t)
	seedFreight(t, db)
	repo := NewReportRepository(db, 0)

	drivers, err := repo.ListTripCandidates(context.Background(), model.TripQuery{Kind: model.PartyDriver, OrganizationID: 1})
	if err != nil {
		t.Fatalf("driver candidates: %v", err)
	}
	// trips 1, 2 and 5 (vehicle without subcontractor still has a driver)
	if len(drivers) != 3 || drivers[2].ID != 5 || drivers[2].Cost != 5 {
		t.Fatalf("driver candidates = %+v", drivers)
	}

	party := int64(31)
	customers, err := repo.ListTripCandidates(context.Background(), model.TripQuery{Kind: model.PartyCustomer, OrganizationID: 1, PartyID: &party})
	if err != nil {
		t.Fatalf("customer candidates: %v", err)
	}
	if len(customers) != 3 || customers[0].Cost != 300 {
		t.Fatalf("customer candidates = %+v", customers)
	}
}

func TestSQLite_WorkflowBoundaries(t *testing.T) {
	db := setupSQLiteDB(t)
	seedFreight(t, db)
	repo := NewReportRepository(db, 0)

	bounds, err := repo.GetWorkflowBoundaries(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetWorkflowBoundaries: %v", err)
	}
	if bounds.WaitingForPickup == nil || *bounds.WaitingForPickup != 2 || bounds.Delivered == nil || *bounds.Delivered != 4 {
		t.Fatalf("bounds = %+v", bounds)
	}

	other, err := repo.GetWorkflowBoundaries(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetWorkflowBoundaries org 2: %v", err)
	}
	if other.WaitingForPickup != nil || other.Delivered == nil || *other.Delivered != 9 {
		t.Fatalf("org 2 bounds = %+v", other)
	}
}

func TestSQLite_SumAdvances(t *testing.T) {
	db := setupSQLiteDB(t)
	seedFreight(t, db)
	repo := NewReportRepository(db, 0)

	totals, err := repo.SumAdvances(context.Background(), model.AdvanceQuery{
		Kind:           model.PartySubcontractor,
		OrganizationID: 1,
		Range:          marchRange(),
	})
	if err != nil {
		t.Fatalf("SumAdvances: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected two parties, got %+v", totals)
	}
	if totals[0].PartyID != 11 || totals[0].Total != 200 || totals[1].PartyID != 12 || totals[1].Total != 500 {
		t.Fatalf("totals = %+v", totals)
	}

	drivers, err := repo.SumAdvances(context.Background(), model.AdvanceQuery{
		Kind:           model.PartyDriver,
		OrganizationID: 1,
		Range:          marchRange(),
	})
	if err != nil {
		t.Fatalf("SumAdvances drivers: %v", err)
	}
	if len(drivers) != 1 || drivers[0].PartyID != 21 || drivers[0].Total != 15 {
		t.Fatalf("driver totals = %+v", drivers)
	}
}

func TestSQLite_Parties(t *testing.T) {
	db := setupSQLiteDB(t)
	seedFreight(t, db)
	repo := NewPartyRepository(db, 0)

	parties, err := repo.ListParties(context.Background(), model.PartyDriver, 1, []int64{21, 99})
	if err != nil {
		t.Fatalf("ListParties: %v", err)
	}
	if len(parties) != 1 || parties[0].Name != "Ann Lee" || parties[0].Code != "DR-01" {
		t.Fatalf("parties = %+v", parties)
	}

	detail, err := repo.GetPartyDetail(context.Background(), model.PartySubcontractor, 1, 11)
	if err != nil {
		t.Fatalf("GetPartyDetail: %v", err)
	}
	if detail.Phone != "555-01" || detail.BankAccount == nil || detail.BankAccount.BankName != "First Bank" {
		t.Fatalf("detail = %+v", detail)
	}

	noBank, err := repo.GetPartyDetail(context.Background(), model.PartySubcontractor, 1, 12)
	if err != nil {
		t.Fatalf("GetPartyDetail 12: %v", err)
	}
	if noBank.BankAccount != nil {
		t.Fatalf("subcontractor 12 has no bank account")
	}

	if _, err := repo.GetPartyDetail(context.Background(), model.PartyCustomer, 2, 31); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected not found for other organization, got %v", err)
	}
}
