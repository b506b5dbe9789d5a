package docstore

import "strings"

// Op is a filter comparison operator.
type Op string

const (
	OpEqual          Op = "=="
	OpNotEqual       Op = "!="
	OpLess           Op = "<"
	OpLessOrEqual    Op = "<="
	OpGreater        Op = ">"
	OpGreaterOrEqual Op = ">="
	OpIn             Op = "in"
	OpArrayContains  Op = "array-contains"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps "desc" (any case) to Desc and everything else to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Filter is one field comparison. Value must be JSON-encodable.
type Filter struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// Sort orders results by one field.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Constraint narrows a collection query. Implementations come only from
// Where, OrderBy and Limit.
type Constraint interface {
	isConstraint()
}

type whereConstraint struct{ filter Filter }

type orderByConstraint struct{ sort Sort }

type limitConstraint struct{ n int }

func (whereConstraint) isConstraint()   {}
func (orderByConstraint) isConstraint() {}
func (limitConstraint) isConstraint()   {}

// Where matches documents whose field compares to v under op.
func Where(field string, op Op, v any) Constraint {
	return whereConstraint{filter: Filter{Field: field, Op: op, Value: v}}
}

// OrderBy sorts by field, ascending unless a direction is given.
func OrderBy(field string, dir ...Direction) Constraint {
	d := Asc
	if len(dir) > 0 && dir[0] != "" {
		d = dir[0]
	}
	return orderByConstraint{sort: Sort{Field: field, Direction: d}}
}

// Limit caps the number of results. When Query receives several, the last one wins.
func Limit(n int) Constraint {
	return limitConstraint{n: n}
}
