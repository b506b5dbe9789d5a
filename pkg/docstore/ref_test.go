package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_StartsUnconstrained(t *testing.T) {
	c := Collection(Seg("notices"))
	assert.Empty(t, c.Filters())
	assert.Empty(t, c.Sorts())
	_, ok := c.Limit()
	assert.False(t, ok)
}

func TestQuery_OrderIndependent(t *testing.T) {
	c := Collection(Seg("members"))
	a := Where("age", OpGreaterOrEqual, 18)
	b := OrderBy("name")
	l := Limit(5)

	orders := [][]Constraint{
		{a, b, l},
		{l, a, b},
		{b, l, a},
		{l, b, a},
	}

	first := Query(c, orders[0]...)
	for _, o := range orders[1:] {
		got := Query(c, o...)
		assert.Equal(t, first.Filters(), got.Filters())
		assert.Equal(t, first.Sorts(), got.Sorts())
		assert.Equal(t, first.limit, got.limit)
	}

	assert.Equal(t, []Filter{{Field: "age", Op: OpGreaterOrEqual, Value: 18}}, first.Filters())
	assert.Equal(t, []Sort{{Field: "name", Direction: Asc}}, first.Sorts())
	n, ok := first.Limit()
	require.True(t, ok)
	assert.Equal(t, 5, n)
	assert.True(t, first.IsQuery())
}

func TestQuery_KeepsOrderWithinKindAndLastLimitWins(t *testing.T) {
	q := Query(Collection(Seg("members")),
		Limit(10),
		Where("ward", OpEqual, 3),
		OrderBy("createdAt", Desc),
		Where("active", OpEqual, true),
		Limit(2),
		OrderBy("name"),
	)

	assert.Equal(t, []Filter{
		{Field: "ward", Op: OpEqual, Value: 3},
		{Field: "active", Op: OpEqual, Value: true},
	}, q.Filters())
	assert.Equal(t, []Sort{
		{Field: "createdAt", Direction: Desc},
		{Field: "name", Direction: Asc},
	}, q.Sorts())
	n, _ := q.Limit()
	assert.Equal(t, 2, n)
}

func TestQuery_DoesNotMutateInput(t *testing.T) {
	base := Query(Collection(Seg("members")), Where("ward", OpEqual, 1), Limit(3))
	baseFilters := base.Filters()

	derived := Query(base, Where("active", OpEqual, true), Limit(7))

	assert.Equal(t, baseFilters, base.Filters())
	n, _ := base.Limit()
	assert.Equal(t, 3, n)
	assert.Len(t, derived.Filters(), 2)
	n, _ = derived.Limit()
	assert.Equal(t, 7, n)

	// mutating an accessor result must not leak back
	f := derived.Filters()
	f[0].Field = "changed"
	assert.Equal(t, "ward", derived.Filters()[0].Field)
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Desc, ParseDirection(" desc "))
	assert.Equal(t, Asc, ParseDirection("descending"))
	assert.Equal(t, Asc, ParseDirection(""))
}
