package mongodb

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/pkg/value"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toBSON converts a tagged value into its BSON form. Integral numbers are
// stored as int64 so counters and ages round-trip without a fraction.
func toBSON(v value.Value) interface{} {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.AsBool()
		return b
	case value.KindNumber:
		n, _ := v.AsNumber()
		if v.IsIntegral() && math.Abs(n) < 1<<53 {
			return int64(n)
		}
		return n
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindArray:
		items, _ := v.AsArray()
		out := make(bson.A, len(items))
		for i, item := range items {
			out[i] = toBSON(item)
		}
		return out
	case value.KindObject:
		o, _ := v.AsObject()
		return objectToBSON(o)
	default:
		return nil
	}
}

func objectToBSON(o *value.Object) bson.D {
	fields := o.Fields()
	out := make(bson.D, 0, len(fields))
	for _, f := range fields {
		out = append(out, bson.E{Key: f.Key, Value: toBSON(f.Value)})
	}
	return out
}

// documentToBSON converts doc for storage under id. Any _id inside doc is replaced.
func documentToBSON(id string, doc *value.Object) bson.D {
	out := bson.D{{Key: model.FieldID, Value: id}}
	for _, e := range objectToBSON(doc) {
		if e.Key == model.FieldID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// fromBSON converts a decoded BSON value into a tagged value.
func fromBSON(x interface{}) value.Value {
	switch t := x.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return value.Null()
	case bool:
		return value.Bool(t)
	case string:
		return value.String(t)
	case int32:
		return value.Number(float64(t))
	case int64:
		return value.Number(float64(t))
	case int:
		return value.Number(float64(t))
	case float64:
		return value.Number(t)
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return value.String(t.String())
		}
		return value.Number(f)
	case primitive.ObjectID:
		return value.String(t.Hex())
	case primitive.DateTime:
		return value.String(model.Timestamp(t.Time()))
	case primitive.Binary:
		return value.String(base64.StdEncoding.EncodeToString(t.Data))
	case primitive.D:
		return value.FromObject(objectFromBSON(t))
	case primitive.M:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := value.NewObject()
		for _, k := range keys {
			o.Set(k, fromBSON(t[k]))
		}
		return value.FromObject(o)
	case primitive.A:
		items := make([]value.Value, len(t))
		for i, item := range t {
			items[i] = fromBSON(item)
		}
		return value.Array(items...)
	case []interface{}:
		return fromBSON(primitive.A(t))
	default:
		return value.String(fmt.Sprint(t))
	}
}

func objectFromBSON(d bson.D) *value.Object {
	o := value.NewObject()
	for _, e := range d {
		o.Set(e.Key, fromBSON(e.Value))
	}
	return o
}
