package costing

import (
	"sort"
	"strings"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

// AggregateCosts groups resolved trips by party. Each trip counts for exactly
// one party; trips without a party are skipped.
func AggregateCosts(trips []model.ResolvedTrip) []model.PartyCost {
	ordered := make([]model.ResolvedTrip, len(trips))
	copy(ordered, trips)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TripID < ordered[j].TripID })

	index := make(map[int64]int)
	result := make([]model.PartyCost, 0)
	for _, trip := range ordered {
		if trip.PartyID == nil {
			continue
		}
		pos, ok := index[*trip.PartyID]
		if !ok {
			result = append(result, model.PartyCost{PartyID: *trip.PartyID})
			pos = len(result) - 1
			index[*trip.PartyID] = pos
		}
		result[pos].TripCount++
		result[pos].CostSum += trip.Cost
	}

	sort.Slice(result, func(i, j int) bool { return result[i].PartyID < result[j].PartyID })
	return result
}

// MergeAdvances full-outer-joins trip costs and advance totals on party id.
// A side missing for a party contributes zero.
func MergeAdvances(costs []model.PartyCost, advances []model.AdvanceTotal) []model.PartyCostRow {
	index := make(map[int64]int, len(costs)+len(advances))
	rows := make([]model.PartyCostRow, 0, len(costs)+len(advances))

	for _, c := range costs {
		rows = append(rows, model.PartyCostRow{
			PartyID:   c.PartyID,
			TotalTrip: c.TripCount,
			CostTotal: c.CostSum,
		})
		index[c.PartyID] = len(rows) - 1
	}

	for _, a := range advances {
		pos, ok := index[a.PartyID]
		if !ok {
			rows = append(rows, model.PartyCostRow{PartyID: a.PartyID})
			pos = len(rows) - 1
			index[a.PartyID] = pos
		}
		rows[pos].AdvanceTotal += a.Total
	}

	for i := range rows {
		rows[i].RemainingTotal = rows[i].CostTotal - rows[i].AdvanceTotal
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PartyID < rows[j].PartyID })
	return rows
}

// AttachParties fills code and name and orders rows by code, then id.
func AttachParties(rows []model.PartyCostRow, parties []model.PartyInfo) []model.PartyCostRow {
	byID := make(map[int64]model.PartyInfo, len(parties))
	for _, p := range parties {
		byID[p.ID] = p
	}
	for i := range rows {
		if p, ok := byID[rows[i].PartyID]; ok {
			rows[i].Code = p.Code
			rows[i].Name = p.Name
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := strings.Compare(rows[i].Code, rows[j].Code); c != 0 {
			return c < 0
		}
		return rows[i].PartyID < rows[j].PartyID
	})
	return rows
}

func PartyIDs(rows []model.PartyCostRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PartyID)
	}
	return ids
}

// GroupTrips buckets trips per party, keeping trip id order.
func GroupTrips(trips []model.ResolvedTrip) map[int64][]model.ResolvedTrip {
	groups := make(map[int64][]model.ResolvedTrip)
	for _, trip := range trips {
		if trip.PartyID == nil {
			continue
		}
		groups[*trip.PartyID] = append(groups[*trip.PartyID], trip)
	}
	return groups
}

func CountInverted(trips []model.ResolvedTrip) int {
	n := 0
	for _, trip := range trips {
		if trip.InvertedWindow {
			n++
		}
	}
	return n
}
