package model

import "time"

type PartyCost struct {
	PartyID   int64
	TripCount int64
	CostSum   float64
}

type PartyCostRow struct {
	PartyID        int64   `json:"party_id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	TotalTrip      int64   `json:"total_trip"`
	CostTotal      float64 `json:"cost_total"`
	AdvanceTotal   float64 `json:"advance_total"`
	RemainingTotal float64 `json:"remaining_total"`
}

type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	PageCount int   `json:"page_count"`
	Total     int64 `json:"total"`
}

type CostPage struct {
	Rows              []PartyCostRow `json:"rows"`
	Pagination        Pagination     `json:"pagination"`
	Partial           bool           `json:"partial"`
	MissingBoundaries []string       `json:"missing_boundaries,omitempty"`
}

type CostDetail struct {
	PartyCostRow
	Party             PartyDetail `json:"party"`
	Partial           bool        `json:"partial"`
	MissingBoundaries []string    `json:"missing_boundaries,omitempty"`
}

// PartyTrips is the trip breakdown behind one party's cost row.
type PartyTrips struct {
	PartyID           int64          `json:"party_id"`
	Trips             []ResolvedTrip `json:"trips"`
	Partial           bool           `json:"partial"`
	MissingBoundaries []string       `json:"missing_boundaries,omitempty"`
}

// CostExport is the unpaginated report with every party's trips.
type CostExport struct {
	Kind        PartyKind                `json:"kind"`
	PeriodStart time.Time                `json:"period_start"`
	PeriodEnd   time.Time                `json:"period_end"`
	DateBasis   DateBasis                `json:"date_basis"`
	Rows        []PartyCostRow           `json:"rows"`
	Trips       map[int64][]ResolvedTrip `json:"trips"`
	Partial     bool                     `json:"partial"`
}
