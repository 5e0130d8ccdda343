package model

type PartyKind string

const (
	PartySubcontractor PartyKind = "SUBCONTRACTOR"
	PartyDriver        PartyKind = "DRIVER"
	PartyCustomer      PartyKind = "CUSTOMER"
)

func (k PartyKind) Valid() bool {
	switch k {
	case PartySubcontractor, PartyDriver, PartyCustomer:
		return true
	}
	return false
}

// AdvanceType is the ledger type counted for this kind of party.
func (k PartyKind) AdvanceType() AdvanceType {
	switch k {
	case PartyDriver:
		return AdvanceTypeDriver
	case PartyCustomer:
		return AdvanceTypeCustomer
	default:
		return AdvanceTypeSubcontractor
	}
}

type PartyInfo struct {
	ID   int64
	Code string
	Name string
}

type BankAccount struct {
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
	BankName      string `json:"bank_name"`
	BankBranch    string `json:"bank_branch"`
}

// PartyDetail carries the contact fields shown on a single-party report.
type PartyDetail struct {
	PartyInfo
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	Address     string       `json:"address"`
	TaxCode     string       `json:"tax_code"`
	BankAccount *BankAccount `json:"bank_account,omitempty"`
}
