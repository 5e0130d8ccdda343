package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

const defaultChunkSize = 1000

type ReportRepository struct {
	db        *gorm.DB
	chunkSize int
}

func NewReportRepository(db *gorm.DB, chunkSize int) *ReportRepository {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &ReportRepository{db: db, chunkSize: chunkSize}
}

// GetSetting returns the newest value stored for key. found is false when the
// organization never configured it.
func (r *ReportRepository) GetSetting(ctx context.Context, orgID int64, key string) (string, bool, error) {
	var values []string
	if err := r.db.WithContext(ctx).Raw(`
		SELECT value
		FROM organization_settings
		WHERE organization_id = ?
			AND key = ?
		ORDER BY id DESC
		LIMIT 1
	`, orgID, key).Scan(&values).Error; err != nil {
		return "", false, err
	}
	if len(values) == 0 {
		return "", false, nil
	}
	return values[0], true, nil
}

func (r *ReportRepository) GetWorkflowBoundaries(ctx context.Context, orgID int64) (model.WorkflowBoundaries, error) {
	var rows []struct {
		Type         string
		DisplayOrder int
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT type, MIN(display_order) AS display_order
		FROM driver_reports
		WHERE organization_id = ?
			AND type IN ?
			AND display_order IS NOT NULL
		GROUP BY type
	`, orgID, []string{
		string(model.DriverReportWaitingForPickup),
		string(model.DriverReportDelivered),
	}).Scan(&rows).Error; err != nil {
		return model.WorkflowBoundaries{}, err
	}

	var bounds model.WorkflowBoundaries
	for _, row := range rows {
		order := row.DisplayOrder
		switch model.DriverReportType(row.Type) {
		case model.DriverReportWaitingForPickup:
			bounds.WaitingForPickup = &order
		case model.DriverReportDelivered:
			bounds.Delivered = &order
		}
	}
	return bounds, nil
}

type tripRow struct {
	ID           int64
	Code         string
	OrderID      int64
	OrderCode    string
	PartyID      *int64
	Cost         float64
	PickupDate   *time.Time
	DeliveryDate *time.Time
}

type statusRow struct {
	ID             int64
	TripID         int64
	DriverReportID *int64
	Type           *string
	DisplayOrder   *int
	CreatedAt      time.Time
}

// ListTripCandidates loads published trips of non-canceled orders attributed to
// a party of q.Kind, together with their full status history.
func (r *ReportRepository) ListTripCandidates(ctx context.Context, q model.TripQuery) ([]model.TripCandidate, error) {
	src, err := sourceFor(q.Kind)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("trips t").
		Select(fmt.Sprintf(`t.id,
			t.code,
			t.order_id,
			o.code AS order_code,
			%s AS party_id,
			COALESCE(%s, 0) AS cost,
			t.pickup_date,
			t.delivery_date`, src.partyColumn, src.costColumn)).
		Joins("JOIN orders o ON o.id = t.order_id")
	for _, join := range src.joins {
		query = query.Joins(join)
	}
	query = applyPredicates(query, tripPredicates(src, q)...)

	var trips []tripRow
	if err := query.Order("t.id ASC").Scan(&trips).Error; err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	if len(trips) == 0 {
		return []model.TripCandidate{}, nil
	}

	ids := make([]int64, len(trips))
	for i, trip := range trips {
		ids[i] = trip.ID
	}
	history, err := r.listStatuses(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]model.TripCandidate, 0, len(trips))
	for _, trip := range trips {
		result = append(result, model.TripCandidate{
			ID:           trip.ID,
			Code:         trip.Code,
			OrderID:      trip.OrderID,
			OrderCode:    trip.OrderCode,
			PartyID:      trip.PartyID,
			Cost:         trip.Cost,
			PickupDate:   trip.PickupDate,
			DeliveryDate: trip.DeliveryDate,
			Statuses:     history[trip.ID],
		})
	}
	return result, nil
}

func tripPredicates(src partySource, q model.TripQuery) []Predicate {
	predicates := []Predicate{
		Eq{Column: "t.organization_id", Value: q.OrganizationID},
		NotNull{Column: "t.published_at"},
		NotNull{Column: "o.published_at"},
		NotEqualOrNull{Column: "o.last_status_type", Value: string(model.OrderStatusCanceled)},
		NotNull{Column: src.partyColumn},
		OptionalEq(src.partyColumn, q.PartyID),
	}
	switch q.DateField {
	case model.TripDatePickup:
		predicates = append(predicates, Between{Column: "t.pickup_date", From: q.Range.From, To: q.Range.To})
	case model.TripDateDelivery:
		predicates = append(predicates, Between{Column: "t.delivery_date", From: q.Range.From, To: q.Range.To})
	case model.TripDateStartCandidates:
		predicates = append(predicates, StartCandidate{From: q.Range.From, To: q.Range.To})
	}
	return predicates
}

func (r *ReportRepository) listStatuses(ctx context.Context, tripIDs []int64) (map[int64][]model.TripStatusEvent, error) {
	history := make(map[int64][]model.TripStatusEvent, len(tripIDs))
	for _, chunk := range chunkIDs(tripIDs, r.chunkSize) {
		var rows []statusRow
		err := r.db.WithContext(ctx).
			Table("trip_statuses ts").
			Select("ts.id, ts.trip_id, ts.driver_report_id, dr.type, dr.display_order, ts.created_at").
			Joins("LEFT JOIN driver_reports dr ON dr.id = ts.driver_report_id").
			Where("ts.trip_id IN ?", chunk).
			Order("ts.trip_id ASC, ts.created_at ASC, ts.id ASC").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("list trip statuses: %w", err)
		}
		for _, row := range rows {
			event := model.TripStatusEvent{
				ID:             row.ID,
				TripID:         row.TripID,
				DriverReportID: row.DriverReportID,
				DisplayOrder:   row.DisplayOrder,
				CreatedAt:      row.CreatedAt,
			}
			if row.Type != nil {
				event.Type = model.DriverReportType(*row.Type)
			}
			history[row.TripID] = append(history[row.TripID], event)
		}
	}
	return history, nil
}

// SumAdvances totals PAYMENT advances of the report kind per party within the
// range. It does not look at trips.
func (r *ReportRepository) SumAdvances(ctx context.Context, q model.AdvanceQuery) ([]model.AdvanceTotal, error) {
	src, err := sourceFor(q.Kind)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("advances a").
		Select(fmt.Sprintf("%s AS party_id, COALESCE(SUM(a.amount), 0) AS total", src.advanceColumn))
	query = applyPredicates(query,
		Eq{Column: "a.organization_id", Value: q.OrganizationID},
		Eq{Column: "a.type", Value: string(q.Kind.AdvanceType())},
		Eq{Column: "a.status", Value: string(model.AdvanceStatusPayment)},
		Between{Column: "a.payment_date", From: q.Range.From, To: q.Range.To},
		NotNull{Column: src.advanceColumn},
		OptionalEq(src.advanceColumn, q.PartyID),
	)

	var totals []model.AdvanceTotal
	if err := query.Group(src.advanceColumn).Order(src.advanceColumn).Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("sum advances: %w", err)
	}
	if totals == nil {
		totals = []model.AdvanceTotal{}
	}
	return totals, nil
}

func chunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = defaultChunkSize
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
