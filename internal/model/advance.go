package model

import "time"

type AdvanceType string

const (
	AdvanceTypeSubcontractor AdvanceType = "SUBCONTRACTOR"
	AdvanceTypeDriver        AdvanceType = "DRIVER"
	AdvanceTypeCustomer      AdvanceType = "CUSTOMER"
)

type AdvanceStatus string

const (
	AdvanceStatusPending  AdvanceStatus = "PENDING"
	AdvanceStatusAccepted AdvanceStatus = "ACCEPTED"
	AdvanceStatusPayment  AdvanceStatus = "PAYMENT"
	AdvanceStatusRejected AdvanceStatus = "REJECTED"
)

type Advance struct {
	ID             int64
	OrganizationID int64
	Type           AdvanceType
	Status         AdvanceStatus
	Amount         float64
	PaymentDate    time.Time
}

type AdvanceQuery struct {
	Kind           PartyKind
	OrganizationID int64
	PartyID        *int64
	Range          DateRange
}

type AdvanceTotal struct {
	PartyID int64
	Total   float64
}
