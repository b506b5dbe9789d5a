package model

import (
	"strings"

	"panchayat-docstore/pkg/value"
)

// Operator is a portable comparison operator.
type Operator string

const (
	OperatorEqual              Operator = "=="
	OperatorNotEqual           Operator = "!="
	OperatorLessThan           Operator = "<"
	OperatorLessThanOrEqual    Operator = "<="
	OperatorGreaterThan        Operator = ">"
	OperatorGreaterThanOrEqual Operator = ">="
	OperatorIn                 Operator = "in"
	OperatorArrayContains      Operator = "array-contains"
)

// ParseOperator normalizes a wire operator. "===" and "!==" are aliases of
// "==" and "!="; anything unrecognized falls back to equality.
func ParseOperator(op string) Operator {
	switch strings.TrimSpace(op) {
	case "==", "===":
		return OperatorEqual
	case "!=", "!==":
		return OperatorNotEqual
	case "<":
		return OperatorLessThan
	case "<=":
		return OperatorLessThanOrEqual
	case ">":
		return OperatorGreaterThan
	case ">=":
		return OperatorGreaterThanOrEqual
	case "in":
		return OperatorIn
	case "array-contains":
		return OperatorArrayContains
	default:
		return OperatorEqual
	}
}

// IsRange reports whether op is one of <, <=, >, >=.
func (op Operator) IsRange() bool {
	switch op {
	case OperatorLessThan, OperatorLessThanOrEqual, OperatorGreaterThan, OperatorGreaterThanOrEqual:
		return true
	}
	return false
}

// Filter compares one field against a value.
type Filter struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"op"`
	Value    value.Value `json:"value"`
}

// Order sorts by one field.
type Order struct {
	Field      string `json:"field"`
	Descending bool   `json:"desc,omitempty"`
}

// Query is a translated list request against one collection.
type Query struct {
	Collection string   `json:"collection"`
	Filters    []Filter `json:"filters,omitempty"`
	Orders     []Order  `json:"orders,omitempty"`
	// Limit <= 0 means unlimited.
	Limit int `json:"limit,omitempty"`
}
