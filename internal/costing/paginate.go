package costing

import "github.com/nurpe/freight-cost-reports/internal/model"

// Paginate slices ordered rows for one page. total counts every row regardless
// of page.
func Paginate(rows []model.PartyCostRow, page, pageSize int) ([]model.PartyCostRow, model.Pagination) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(rows)
	meta := model.Pagination{
		Page:      page,
		PageSize:  pageSize,
		PageCount: (total + pageSize - 1) / pageSize,
		Total:     int64(total),
	}

	offset := (page - 1) * pageSize
	if offset >= total {
		return []model.PartyCostRow{}, meta
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return rows[offset:end], meta
}
