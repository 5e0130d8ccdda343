package repository

import (
	"gorm.io/gorm"
)

// Predicate is one typed WHERE fragment with its bound arguments.
type Predicate interface {
	SQL() (string, []interface{})
}

type Eq struct {
	Column string
	Value  interface{}
}

func (p Eq) SQL() (string, []interface{}) {
	return p.Column + " = ?", []interface{}{p.Value}
}

// NotEqualOrNull matches rows where Column differs from Value or is NULL.
type NotEqualOrNull struct {
	Column string
	Value  interface{}
}

func (p NotEqualOrNull) SQL() (string, []interface{}) {
	return "(" + p.Column + " IS NULL OR " + p.Column + " <> ?)", []interface{}{p.Value}
}

type NotNull struct {
	Column string
}

func (p NotNull) SQL() (string, []interface{}) {
	return p.Column + " IS NOT NULL", nil
}

// In renders a list membership test. An empty list matches nothing.
type In struct {
	Column string
	Values []int64
}

func (p In) SQL() (string, []interface{}) {
	if len(p.Values) == 0 {
		return "1 = 0", nil
	}
	return p.Column + " IN ?", []interface{}{p.Values}
}

// Between is inclusive on both ends.
type Between struct {
	Column string
	From   interface{}
	To     interface{}
}

func (p Between) SQL() (string, []interface{}) {
	return p.Column + " BETWEEN ? AND ?", []interface{}{p.From, p.To}
}

// StartCandidate matches trips picked up in the range or carrying any status
// row created in it.
type StartCandidate struct {
	From interface{}
	To   interface{}
}

func (p StartCandidate) SQL() (string, []interface{}) {
	return "(t.pickup_date BETWEEN ? AND ? OR EXISTS (SELECT 1 FROM trip_statuses ts WHERE ts.trip_id = t.id AND ts.created_at BETWEEN ? AND ?))",
		[]interface{}{p.From, p.To, p.From, p.To}
}

// OptionalEq yields nil when value is nil so the filter is skipped.
func OptionalEq(column string, value *int64) Predicate {
	if value == nil {
		return nil
	}
	return Eq{Column: column, Value: *value}
}

func applyPredicates(query *gorm.DB, predicates ...Predicate) *gorm.DB {
	for _, p := range predicates {
		if p == nil {
			continue
		}
		clause, args := p.SQL()
		query = query.Where(clause, args...)
	}
	return query
}
