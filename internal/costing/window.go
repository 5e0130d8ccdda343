package costing

import (
	"sort"
	"time"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

// ResolveWindows picks the latest status of every candidate and computes the
// start and end of its cost attribution window. Trips without a non-canceled
// status, or whose latest step is not in driverReportIDs, are dropped.
// The result is ordered by trip id.
func ResolveWindows(
	candidates []model.TripCandidate,
	bounds model.WorkflowBoundaries,
	driverReportIDs []int64,
) []model.ResolvedTrip {
	if len(driverReportIDs) == 0 || len(candidates) == 0 {
		return []model.ResolvedTrip{}
	}

	allowed := make(map[int64]struct{}, len(driverReportIDs))
	for _, id := range driverReportIDs {
		allowed[id] = struct{}{}
	}

	result := make([]model.ResolvedTrip, 0, len(candidates))
	for _, c := range candidates {
		latest, ok := LatestStatus(c.Statuses)
		if !ok || latest.DriverReportID == nil {
			continue
		}
		if _, ok := allowed[*latest.DriverReportID]; !ok {
			continue
		}

		start := resolveStart(c, latest, bounds)
		end := resolveEnd(c, latest, bounds)
		result = append(result, model.ResolvedTrip{
			TripID:         c.ID,
			TripCode:       c.Code,
			OrderCode:      c.OrderCode,
			PartyID:        c.PartyID,
			Cost:           c.Cost,
			PickupDate:     c.PickupDate,
			DeliveryDate:   c.DeliveryDate,
			LatestStatus:   latest.Type,
			StartDate:      start,
			EndDate:        end,
			InvertedWindow: start != nil && end != nil && start.After(*end),
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].TripID < result[j].TripID })
	return result
}

// LatestStatus returns the newest non-canceled status ordered by created_at
// and then id, both descending.
func LatestStatus(statuses []model.TripStatusEvent) (model.TripStatusEvent, bool) {
	var latest model.TripStatusEvent
	found := false
	for _, st := range statuses {
		if st.Type == model.DriverReportCanceled {
			continue
		}
		if !found || newer(st, latest) {
			latest = st
			found = true
		}
	}
	return latest, found
}

func resolveStart(c model.TripCandidate, latest model.TripStatusEvent, bounds model.WorkflowBoundaries) *time.Time {
	var start *time.Time
	switch {
	case less(latest.DisplayOrder, bounds.WaitingForPickup):
		start = c.PickupDate
	case equal(latest.DisplayOrder, bounds.WaitingForPickup):
		start = timePtr(latest.CreatedAt)
	default:
		start = latestCreatedAtOfType(c.Statuses, model.DriverReportWaitingForPickup)
	}
	if start == nil {
		start = c.PickupDate
	}
	return start
}

func resolveEnd(c model.TripCandidate, latest model.TripStatusEvent, bounds model.WorkflowBoundaries) *time.Time {
	if less(latest.DisplayOrder, bounds.Delivered) {
		return c.DeliveryDate
	}
	return timePtr(latest.CreatedAt)
}

func latestCreatedAtOfType(statuses []model.TripStatusEvent, typ model.DriverReportType) *time.Time {
	var latest *model.TripStatusEvent
	for i := range statuses {
		if statuses[i].Type != typ {
			continue
		}
		if latest == nil || newer(statuses[i], *latest) {
			latest = &statuses[i]
		}
	}
	if latest == nil {
		return nil
	}
	return timePtr(latest.CreatedAt)
}

func newer(a, b model.TripStatusEvent) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// less and equal follow SQL NULL semantics: a missing operand never matches.
func less(a, b *int) bool {
	return a != nil && b != nil && *a < *b
}

func equal(a, b *int) bool {
	return a != nil && b != nil && *a == *b
}

func timePtr(t time.Time) *time.Time {
	return &t
}
