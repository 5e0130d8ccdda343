package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

type PartyRepository struct {
	db        *gorm.DB
	chunkSize int
}

func NewPartyRepository(db *gorm.DB, chunkSize int) *PartyRepository {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &PartyRepository{db: db, chunkSize: chunkSize}
}

// ListParties returns code and name for the given party ids of one organization.
func (r *PartyRepository) ListParties(ctx context.Context, kind model.PartyKind, orgID int64, ids []int64) ([]model.PartyInfo, error) {
	src, err := sourceFor(kind)
	if err != nil {
		return nil, err
	}
	result := make([]model.PartyInfo, 0, len(ids))
	for _, chunk := range chunkIDs(ids, r.chunkSize) {
		var rows []model.PartyInfo
		err := r.db.WithContext(ctx).
			Table(src.table+" p").
			Select(fmt.Sprintf("p.id, COALESCE(p.code, '') AS code, %s AS name", src.nameColumn)).
			Where("p.organization_id = ?", orgID).
			Where("p.id IN ?", chunk).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", src.table, err)
		}
		result = append(result, rows...)
	}
	return result, nil
}

// GetPartyDetail loads contact fields for one party. Subcontractors also carry
// their bank account.
func (r *PartyRepository) GetPartyDetail(ctx context.Context, kind model.PartyKind, orgID, id int64) (*model.PartyDetail, error) {
	var row struct {
		ID            int64
		Code          string
		Name          string
		Phone         string
		Email         string
		Address       string
		TaxCode       string
		AccountNumber *string
		HolderName    *string
		BankName      *string
		BankBranch    *string
	}

	var err error
	switch kind {
	case model.PartySubcontractor:
		err = r.db.WithContext(ctx).Raw(`
			SELECT
				p.id,
				COALESCE(p.code, '') AS code,
				COALESCE(p.name, '') AS name,
				COALESCE(p.phone, '') AS phone,
				COALESCE(p.email, '') AS email,
				COALESCE(p.address, '') AS address,
				COALESCE(p.tax_code, '') AS tax_code,
				ba.account_number,
				ba.holder_name,
				ba.bank_name,
				ba.bank_branch
			FROM subcontractors p
			LEFT JOIN bank_accounts ba ON ba.id = p.bank_account_id
			WHERE p.organization_id = ?
				AND p.id = ?
			LIMIT 1
		`, orgID, id).Scan(&row).Error
	case model.PartyDriver:
		err = r.db.WithContext(ctx).Raw(`
			SELECT
				p.id,
				COALESCE(p.code, '') AS code,
				TRIM(COALESCE(p.first_name, '') || ' ' || COALESCE(p.last_name, '')) AS name,
				COALESCE(p.phone, '') AS phone,
				COALESCE(p.email, '') AS email,
				COALESCE(p.address, '') AS address,
				'' AS tax_code
			FROM drivers p
			WHERE p.organization_id = ?
				AND p.id = ?
			LIMIT 1
		`, orgID, id).Scan(&row).Error
	case model.PartyCustomer:
		err = r.db.WithContext(ctx).Raw(`
			SELECT
				p.id,
				COALESCE(p.code, '') AS code,
				COALESCE(p.name, '') AS name,
				COALESCE(p.phone, '') AS phone,
				COALESCE(p.email, '') AS email,
				COALESCE(p.address, '') AS address,
				COALESCE(p.tax_code, '') AS tax_code
			FROM customers p
			WHERE p.organization_id = ?
				AND p.id = ?
			LIMIT 1
		`, orgID, id).Scan(&row).Error
	default:
		return nil, fmt.Errorf("unsupported party kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	detail := &model.PartyDetail{
		PartyInfo: model.PartyInfo{ID: row.ID, Code: row.Code, Name: row.Name},
		Phone:     row.Phone,
		Email:     row.Email,
		Address:   row.Address,
		TaxCode:   row.TaxCode,
	}
	if row.AccountNumber != nil {
		detail.BankAccount = &model.BankAccount{
			AccountNumber: *row.AccountNumber,
			HolderName:    deref(row.HolderName),
			BankName:      deref(row.BankName),
			BankBranch:    deref(row.BankBranch),
		}
	}
	return detail, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
