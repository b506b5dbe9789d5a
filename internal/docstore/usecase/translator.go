package usecase

import (
	"encoding/json"
	"strconv"
	"strings"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/internal/shared/docpath"
	"panchayat-docstore/internal/shared/errors"
	"panchayat-docstore/pkg/value"
)

// FilterSpec is one element of the filters query parameter.
type FilterSpec struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value value.Value `json:"value"`
}

// SortSpec is one element of the sorts query parameter.
type SortSpec struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// ListRequest is a parsed but untranslated list request.
type ListRequest struct {
	Path       string
	Collection string
	Filters    []FilterSpec
	Sorts      []SortSpec
	// Limit <= 0 means unlimited.
	Limit int
}

// ParseListRequest decodes the raw query parameters of a list request.
// Empty parameters are absent. filters and sorts must be JSON arrays; array
// entries that do not decode are skipped. Any other malformed parameter is a
// validation error.
func ParseListRequest(path, filtersJSON, sortsJSON, limitRaw string) (ListRequest, error) {
	collection, err := docpath.CollectionName(path)
	if err != nil {
		return ListRequest{}, err
	}
	req := ListRequest{Path: docpath.Clean(path), Collection: collection}

	if strings.TrimSpace(filtersJSON) != "" {
		filters, ok := decodeEntries[FilterSpec](filtersJSON)
		if !ok {
			return ListRequest{}, errors.NewValidationError("filters is not a valid JSON array").
				WithDetail("filters", filtersJSON).
				WithCause(errors.ErrInvalidQuery)
		}
		req.Filters = filters
	}
	if strings.TrimSpace(sortsJSON) != "" {
		sorts, ok := decodeEntries[SortSpec](sortsJSON)
		if !ok {
			return ListRequest{}, errors.NewValidationError("sorts is not a valid JSON array").
				WithDetail("sorts", sortsJSON).
				WithCause(errors.ErrInvalidQuery)
		}
		req.Sorts = sorts
	}
	if raw := strings.TrimSpace(limitRaw); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ListRequest{}, errors.NewValidationError("limit must be an integer").
				WithDetail("limit", limitRaw).
				WithCause(errors.ErrInvalidQuery)
		}
		req.Limit = n
	}
	return req, nil
}

// decodeEntries decodes a JSON array element by element, dropping elements
// that do not decode into T. ok is false only when raw is not an array.
func decodeEntries[T any](raw string) (entries []T, ok bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	for _, item := range items {
		var entry T
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, true
}

// DefaultOrder applies when a list request names no sort.
var DefaultOrder = model.Order{Field: model.FieldCreatedAt, Descending: true}

// Translate turns a parsed request into a backend-neutral query. Filters
// without a field or operator and sorts without a field are dropped.
func Translate(req ListRequest) model.Query {
	q := model.Query{Collection: req.Collection}

	for _, f := range req.Filters {
		if f.Field == "" || strings.TrimSpace(f.Op) == "" {
			continue
		}
		op := model.ParseOperator(f.Op)
		v := f.Value
		if op == model.OperatorIn && v.Kind() != value.KindArray {
			v = value.Array(v)
		}
		q.Filters = append(q.Filters, model.Filter{Field: f.Field, Operator: op, Value: v})
	}

	for _, s := range req.Sorts {
		if s.Field == "" {
			continue
		}
		q.Orders = append(q.Orders, model.Order{
			Field:      s.Field,
			Descending: strings.EqualFold(strings.TrimSpace(s.Direction), "desc"),
		})
	}
	if len(q.Orders) == 0 {
		q.Orders = []model.Order{DefaultOrder}
	}

	if req.Limit > 0 {
		q.Limit = req.Limit
	}
	return q
}
