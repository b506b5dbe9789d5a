package mongodb

import (
	"panchayat-docstore/internal/docstore/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BuildFilter translates filters into one MongoDB filter document. Several
// filters are combined with $and so two conditions on one field never collide.
func BuildFilter(filters []model.Filter) bson.M {
	var and []bson.M
	for _, f := range filters {
		if f.Field == "" {
			continue
		}
		and = append(and, singleFilter(f))
	}

	switch len(and) {
	case 0:
		return bson.M{}
	case 1:
		return and[0]
	default:
		return bson.M{"$and": and}
	}
}

func singleFilter(f model.Filter) bson.M {
	v := toBSON(f.Value)

	switch f.Operator {
	case model.OperatorNotEqual:
		return bson.M{f.Field: bson.M{"$ne": v}}
	case model.OperatorLessThan:
		return bson.M{f.Field: bson.M{"$lt": v}}
	case model.OperatorLessThanOrEqual:
		return bson.M{f.Field: bson.M{"$lte": v}}
	case model.OperatorGreaterThan:
		return bson.M{f.Field: bson.M{"$gt": v}}
	case model.OperatorGreaterThanOrEqual:
		return bson.M{f.Field: bson.M{"$gte": v}}
	case model.OperatorIn:
		arr, ok := v.(bson.A)
		if !ok {
			arr = bson.A{v}
		}
		return bson.M{f.Field: bson.M{"$in": arr}}
	case model.OperatorArrayContains:
		// equality against an array field matches any element
		return bson.M{f.Field: v}
	default:
		return bson.M{f.Field: v}
	}
}

// BuildFindOptions carries the sort keys and limit of q.
func BuildFindOptions(q model.Query) *options.FindOptions {
	opts := options.Find()
	if len(q.Orders) > 0 {
		sort := make(bson.D, 0, len(q.Orders))
		for _, o := range q.Orders {
			dir := 1
			if o.Descending {
				dir = -1
			}
			sort = append(sort, bson.E{Key: o.Field, Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}
