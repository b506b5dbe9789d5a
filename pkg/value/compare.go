package value

import "strings"

// rank orders kinds the way MongoDB orders BSON types when sorting mixed fields.
func rank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindNumber:
		return 1
	case KindString:
		return 2
	case KindObject:
		return 3
	case KindArray:
		return 4
	case KindBool:
		return 5
	default:
		return 6
	}
}

// Comparable reports whether range operators (<, <=, >, >=) may match a against b.
// Only values of the same kind are comparable.
func Comparable(a, b Value) bool {
	return a.kind == b.kind
}

// Equal reports deep equality. Object key order is not significant.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, f := range a.obj.fields {
			other, ok := b.obj.Get(f.Key)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare returns -1, 0 or 1. It is a total order across kinds.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return sign(rank(a.kind) - rank(b.kind))
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindNumber:
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		default:
			return 0
		}
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindArray:
		for i := 0; i < len(a.arr) && i < len(b.arr); i++ {
			if c := Compare(a.arr[i], b.arr[i]); c != 0 {
				return c
			}
		}
		return sign(len(a.arr) - len(b.arr))
	case KindObject:
		af, bf := a.obj.Fields(), b.obj.Fields()
		for i := 0; i < len(af) && i < len(bf); i++ {
			if c := strings.Compare(af[i].Key, bf[i].Key); c != 0 {
				return c
			}
			if c := Compare(af[i].Value, bf[i].Value); c != 0 {
				return c
			}
		}
		return sign(len(af) - len(bf))
	}
	return 0
}

// Contains reports whether arr is an array holding an element equal to v.
func Contains(arr, v Value) bool {
	items, ok := arr.AsArray()
	if !ok {
		return false
	}
	for _, item := range items {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
