package repository

import (
	"fmt"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

// partySource tells the trip and advance queries how a trip reaches its
// billable party and which cost column belongs to it. The trip query always
// joins orders as "o".
type partySource struct {
	joins         []string
	partyColumn   string
	costColumn    string
	advanceColumn string
	table         string
	nameColumn    string
}

var partySources = map[model.PartyKind]partySource{
	model.PartySubcontractor: {
		joins:         []string{"JOIN vehicles v ON v.id = t.vehicle_id"},
		partyColumn:   "v.subcontractor_id",
		costColumn:    "t.subcontractor_cost",
		advanceColumn: "a.subcontractor_id",
		table:         "subcontractors",
		nameColumn:    "p.name",
	},
	model.PartyDriver: {
		partyColumn:   "t.driver_id",
		costColumn:    "t.driver_cost",
		advanceColumn: "a.driver_id",
		table:         "drivers",
		nameColumn:    "TRIM(COALESCE(p.first_name, '') || ' ' || COALESCE(p.last_name, ''))",
	},
	model.PartyCustomer: {
		partyColumn:   "o.customer_id",
		costColumn:    "t.customer_cost",
		advanceColumn: "a.customer_id",
		table:         "customers",
		nameColumn:    "p.name",
	},
}

func sourceFor(kind model.PartyKind) (partySource, error) {
	src, ok := partySources[kind]
	if !ok {
		return partySource{}, fmt.Errorf("unsupported party kind %q", kind)
	}
	return src, nil
}
