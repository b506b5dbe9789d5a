package main

import (
	"fmt"
	"strings"

	"panchayat-docstore/pkg/docstore"

	"gopkg.in/yaml.v3"
)

var knownOps = map[docstore.Op]bool{
	docstore.OpEqual:          true,
	docstore.OpNotEqual:       true,
	docstore.OpLess:           true,
	docstore.OpLessOrEqual:    true,
	docstore.OpGreater:        true,
	docstore.OpGreaterOrEqual: true,
	docstore.OpIn:             true,
	docstore.OpArrayContains:  true,
}

func buildQuery(path string, wheres, orders []string, limit int) (docstore.CollectionRef, error) {
	var constraints []docstore.Constraint
	for _, w := range wheres {
		f, err := parseWhere(w)
		if err != nil {
			return docstore.CollectionRef{}, err
		}
		constraints = append(constraints, docstore.Where(f.Field, f.Op, f.Value))
	}
	for _, o := range orders {
		s, err := parseOrder(o)
		if err != nil {
			return docstore.CollectionRef{}, err
		}
		constraints = append(constraints, docstore.OrderBy(s.Field, s.Direction))
	}
	if limit < 0 {
		return docstore.CollectionRef{}, fmt.Errorf("--limit must not be negative")
	}
	if limit > 0 {
		constraints = append(constraints, docstore.Limit(limit))
	}
	return docstore.Query(docstore.Collection(docstore.Seg(path)), constraints...), nil
}

// parseWhere reads field:op:value. The value is a YAML scalar or flow
// sequence, so 3, true and [a,b] keep their types.
func parseWhere(s string) (docstore.Filter, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return docstore.Filter{}, fmt.Errorf("invalid --where %q (want field:op:value)", s)
	}
	op := docstore.Op(parts[1])
	if !knownOps[op] {
		return docstore.Filter{}, fmt.Errorf("invalid --where %q: unknown operator %q", s, parts[1])
	}
	v, err := parseScalar(parts[2])
	if err != nil {
		return docstore.Filter{}, fmt.Errorf("invalid --where %q: %w", s, err)
	}
	return docstore.Filter{Field: parts[0], Op: op, Value: v}, nil
}

// parseOrder reads field or field:asc|desc.
func parseOrder(s string) (docstore.Sort, error) {
	field, dir, hasDir := strings.Cut(s, ":")
	if field == "" {
		return docstore.Sort{}, fmt.Errorf("invalid --order %q (want field[:desc])", s)
	}
	if !hasDir {
		return docstore.Sort{Field: field, Direction: docstore.Asc}, nil
	}
	if !strings.EqualFold(dir, "asc") && !strings.EqualFold(dir, "desc") {
		return docstore.Sort{}, fmt.Errorf("invalid --order %q: direction must be asc or desc", s)
	}
	return docstore.Sort{Field: field, Direction: docstore.ParseDirection(dir)}, nil
}

func parseScalar(raw string) (any, error) {
	if raw == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	if _, isMap := v.(map[string]any); isMap {
		return nil, fmt.Errorf("objects are not comparable values")
	}
	return v, nil
}
