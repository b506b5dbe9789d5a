package memory

import (
	"sort"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/pkg/value"
)

// Matches reports whether doc satisfies every filter.
func Matches(doc *value.Object, filters []model.Filter) bool {
	for _, f := range filters {
		if !matchFilter(doc, f) {
			return false
		}
	}
	return true
}

func matchFilter(doc *value.Object, f model.Filter) bool {
	field, ok := model.Lookup(doc, f.Field)
	if !ok {
		field = value.Null()
	}

	switch f.Operator {
	case model.OperatorNotEqual:
		return !matchEqual(field, f.Value)
	case model.OperatorLessThan, model.OperatorLessThanOrEqual,
		model.OperatorGreaterThan, model.OperatorGreaterThanOrEqual:
		if !ok {
			return false
		}
		return matchRange(field, f.Operator, f.Value)
	case model.OperatorIn:
		candidates, isArray := f.Value.AsArray()
		if !isArray {
			candidates = []value.Value{f.Value}
		}
		for _, c := range candidates {
			if matchEqual(field, c) {
				return true
			}
		}
		return false
	case model.OperatorArrayContains:
		return value.Contains(field, f.Value)
	default:
		return matchEqual(field, f.Value)
	}
}

// matchEqual follows document-store equality: an array field also matches
// when one of its elements equals want.
func matchEqual(field, want value.Value) bool {
	if value.Equal(field, want) {
		return true
	}
	if _, wantArray := want.AsArray(); !wantArray {
		return value.Contains(field, want)
	}
	return false
}

func matchRange(field value.Value, op model.Operator, bound value.Value) bool {
	if items, ok := field.AsArray(); ok {
		if _, boundArray := bound.AsArray(); !boundArray {
			for _, item := range items {
				if matchRange(item, op, bound) {
					return true
				}
			}
			return false
		}
	}
	if !value.Comparable(field, bound) {
		return false
	}
	c := value.Compare(field, bound)
	switch op {
	case model.OperatorLessThan:
		return c < 0
	case model.OperatorLessThanOrEqual:
		return c <= 0
	case model.OperatorGreaterThan:
		return c > 0
	default:
		return c >= 0
	}
}

// SortDocuments orders docs in place. Missing fields sort as null. Ties keep
// their input order.
func SortDocuments(docs []*value.Object, orders []model.Order) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range orders {
			a, _ := model.Lookup(docs[i], o.Field)
			b, _ := model.Lookup(docs[j], o.Field)
			c := value.Compare(a, b)
			if c == 0 {
				continue
			}
			if o.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Apply filters, sorts and limits docs. The input slice is not modified.
func Apply(docs []*value.Object, q model.Query) []*value.Object {
	out := make([]*value.Object, 0, len(docs))
	for _, d := range docs {
		if Matches(d, q.Filters) {
			out = append(out, d)
		}
	}
	SortDocuments(out, q.Orders)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
