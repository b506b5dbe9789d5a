package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectJSON_PreservesKeyOrder(t *testing.T) {
	in := `{"zeta":1,"alpha":"a","mid":[true,null,{"b":2,"a":1}]}`

	var obj Object
	require.NoError(t, json.Unmarshal([]byte(in), &obj))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	out, err := json.Marshal(&obj)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestObjectJSON_RejectsNonObject(t *testing.T) {
	var obj Object
	err := json.Unmarshal([]byte(`[1,2]`), &obj)
	assert.Error(t, err)
}

func TestObject_SetKeepsPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", Number(1))
	o.Set("b", Number(2))
	o.Set("a", String("x"))

	assert.Equal(t, []string{"a", "b"}, o.Keys())
	v, ok := o.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", v.Interface())

	assert.True(t, o.Delete("a"))
	assert.False(t, o.Delete("a"))
	assert.Equal(t, []string{"b"}, o.Keys())
}

func TestObject_CloneIsDeep(t *testing.T) {
	o := NewObject()
	inner := NewObject()
	inner.Set("n", Number(1))
	o.Set("inner", FromObject(inner))

	c := o.Clone()
	inner.Set("n", Number(2))

	v, _ := c.Get("inner")
	io, _ := v.AsObject()
	n, _ := io.Get("n")
	assert.Equal(t, 1.0, n.Interface())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"b":    []any{1, "two", json.Number("3.5")},
		"a":    true,
		"none": nil,
	})
	require.NoError(t, err)

	o, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "none"}, o.Keys())
	assert.Equal(t, map[string]any{
		"a":    true,
		"b":    []any{1.0, "two", 3.5},
		"none": nil,
	}, v.Interface())

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"numbers", Number(1), Number(2), -1},
		{"equal numbers", Number(2), Number(2), 0},
		{"strings", String("2024-02-01"), String("2024-01-01"), 1},
		{"bools", Bool(false), Bool(true), -1},
		{"null before number", Null(), Number(-5), -1},
		{"number before string", Number(100), String("1"), -1},
		{"array prefix", Array(Number(1)), Array(Number(1), Number(2)), -1},
		{"bool after array", Bool(false), Array(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestEqualAndContains(t *testing.T) {
	a := MustFromAny(map[string]any{"x": 1, "y": []any{"p", "q"}})
	b := MustFromAny(map[string]any{"y": []any{"p", "q"}, "x": 1.0})
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(Number(1), String("1")))

	tags := MustFromAny([]any{"red", "green"})
	assert.True(t, Contains(tags, String("green")))
	assert.False(t, Contains(tags, String("blue")))
	assert.False(t, Contains(String("green"), String("green")))
}

func TestIsIntegral(t *testing.T) {
	assert.True(t, Number(42).IsIntegral())
	assert.False(t, Number(4.2).IsIntegral())
	assert.False(t, String("42").IsIntegral())
}
