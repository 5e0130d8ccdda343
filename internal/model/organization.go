package model

// SettingKeyReportCalculationDate selects which trip date drives report inclusion.
const SettingKeyReportCalculationDate = "REPORT_CALCULATION_DATE_FLAG"

type DateBasis string

const (
	DateBasisTripPickupDate   DateBasis = "TRIP_PICKUP_DATE"
	DateBasisTripDeliveryDate DateBasis = "TRIP_DELIVERY_DATE"
	DateBasisStatusCreatedAt  DateBasis = "STATUS_CREATED_AT"
)

// ParseDateBasis maps a stored setting value to a known basis. Empty or unknown
// values fall back to STATUS_CREATED_AT.
func ParseDateBasis(raw string) DateBasis {
	switch DateBasis(raw) {
	case DateBasisTripPickupDate:
		return DateBasisTripPickupDate
	case DateBasisTripDeliveryDate:
		return DateBasisTripDeliveryDate
	default:
		return DateBasisStatusCreatedAt
	}
}

type OrganizationSetting struct {
	ID             int64
	OrganizationID int64
	Key            string
	Value          string
}

type Principal struct {
	UserID int64
	OrgID  int64
}
