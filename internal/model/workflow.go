package model

import "time"

type DriverReportType string

const (
	DriverReportNew                 DriverReportType = "NEW"
	DriverReportPendingConfirmation DriverReportType = "PENDING_CONFIRMATION"
	DriverReportWaitingForPickup    DriverReportType = "WAITING_FOR_PICKUP"
	DriverReportInTransit           DriverReportType = "IN_TRANSIT"
	DriverReportDelivered           DriverReportType = "DELIVERED"
	DriverReportCompleted           DriverReportType = "COMPLETED"
	DriverReportCanceled            DriverReportType = "CANCELED"
)

type OrderStatusType string

const OrderStatusCanceled OrderStatusType = "CANCELED"

// WorkflowBoundaries holds the display_order of the steps that delimit the
// billable window. A nil marker means the organization has no such step.
type WorkflowBoundaries struct {
	WaitingForPickup *int
	Delivered        *int
}

func (b WorkflowBoundaries) Missing() []string {
	var missing []string
	if b.WaitingForPickup == nil {
		missing = append(missing, string(DriverReportWaitingForPickup))
	}
	if b.Delivered == nil {
		missing = append(missing, string(DriverReportDelivered))
	}
	return missing
}

// TripStatusEvent is one row of a trip's append-only status history joined with
// its driver report step.
type TripStatusEvent struct {
	ID             int64
	TripID         int64
	DriverReportID *int64
	Type           DriverReportType
	DisplayOrder   *int
	CreatedAt      time.Time
}
