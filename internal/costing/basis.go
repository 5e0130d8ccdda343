package costing

import (
	"time"

	"github.com/jinzhu/now"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

// DateBasisStrategy describes where the reporting range is applied for one
// date-basis setting: pushed into the trip query on a raw trip date, or on the
// resolved start date after window resolution.
type DateBasisStrategy struct {
	Basis      model.DateBasis
	PreFilter  model.TripDateField
	PostFilter bool
}

var strategies = map[model.DateBasis]DateBasisStrategy{
	model.DateBasisTripPickupDate: {
		Basis:     model.DateBasisTripPickupDate,
		PreFilter: model.TripDatePickup,
	},
	model.DateBasisTripDeliveryDate: {
		Basis:     model.DateBasisTripDeliveryDate,
		PreFilter: model.TripDateDelivery,
	},
	model.DateBasisStatusCreatedAt: {
		Basis:      model.DateBasisStatusCreatedAt,
		PreFilter:  model.TripDateStartCandidates,
		PostFilter: true,
	},
}

func StrategyFor(basis model.DateBasis) DateBasisStrategy {
	if s, ok := strategies[basis]; ok {
		return s
	}
	return strategies[model.DateBasisStatusCreatedAt]
}

func (s DateBasisStrategy) TripQuery(kind model.PartyKind, orgID int64, partyID *int64, rng model.DateRange) model.TripQuery {
	return model.TripQuery{
		Kind:           kind,
		OrganizationID: orgID,
		PartyID:        partyID,
		DateField:      s.PreFilter,
		Range:          rng,
	}
}

// Apply keeps the trips whose resolved start date falls in rng. Strategies
// without a post-filter return trips unchanged.
func (s DateBasisStrategy) Apply(trips []model.ResolvedTrip, rng model.DateRange) []model.ResolvedTrip {
	if !s.PostFilter {
		return trips
	}
	kept := make([]model.ResolvedTrip, 0, len(trips))
	for _, trip := range trips {
		if rng.Contains(trip.StartDate) {
			kept = append(kept, trip)
		}
	}
	return kept
}

// NewDateRange widens the inclusive day range to [start of first day, end of last day].
func NewDateRange(start, end time.Time) model.DateRange {
	return model.DateRange{
		From: now.With(start).BeginningOfDay(),
		To:   now.With(end).EndOfDay(),
	}
}
