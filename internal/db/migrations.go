package db

import (
	"fmt"

	"gorm.io/gorm"
)

// The service only reads. These indexes back the report queries on tables
// owned by the operational services.
var migrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_trip_statuses_trip_created ON trip_statuses (trip_id, created_at DESC, id DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_org_published ON trips (organization_id) WHERE published_at IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_trips_org_pickup ON trips (organization_id, pickup_date);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_org_delivery ON trips (organization_id, delivery_date);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_driver ON trips (driver_id) WHERE driver_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_subcontractor ON vehicles (subcontractor_id) WHERE subcontractor_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_driver_reports_org_type ON driver_reports (organization_id, type);`,
	`CREATE INDEX IF NOT EXISTS idx_advances_report ON advances (organization_id, type, status, payment_date);`,
	`CREATE INDEX IF NOT EXISTS idx_organization_settings_key ON organization_settings (organization_id, key, id DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
