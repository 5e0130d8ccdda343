package model

import "time"

// TripCandidate is a published trip of a non-canceled order together with the
// billable party it is attributed to and its full status history.
type TripCandidate struct {
	ID           int64
	Code         string
	OrderID      int64
	OrderCode    string
	PartyID      *int64
	Cost         float64
	PickupDate   *time.Time
	DeliveryDate *time.Time
	Statuses     []TripStatusEvent
}

// ResolvedTrip is a trip with its cost attribution window.
type ResolvedTrip struct {
	TripID         int64            `json:"trip_id"`
	TripCode       string           `json:"trip_code"`
	OrderCode      string           `json:"order_code"`
	PartyID        *int64           `json:"party_id"`
	Cost           float64          `json:"cost"`
	PickupDate     *time.Time       `json:"pickup_date"`
	DeliveryDate   *time.Time       `json:"delivery_date"`
	LatestStatus   DriverReportType `json:"latest_status"`
	StartDate      *time.Time       `json:"start_date"`
	EndDate        *time.Time       `json:"end_date"`
	InvertedWindow bool             `json:"inverted_window"`
}

type TripDateField string

const (
	TripDateNone     TripDateField = ""
	TripDatePickup   TripDateField = "pickup_date"
	TripDateDelivery TripDateField = "delivery_date"

	// TripDateStartCandidates keeps trips whose pickup date or any status
	// timestamp lies in the range. Every resolvable start date is one of
	// those, so it is a superset of the exact start-date filter.
	TripDateStartCandidates TripDateField = "start_candidates"
)

type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies within the inclusive range. A nil t is never
// contained.
func (r DateRange) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Before(r.From) && !t.After(r.To)
}

type TripQuery struct {
	Kind           PartyKind
	OrganizationID int64
	PartyID        *int64
	DateField      TripDateField
	Range          DateRange
}
