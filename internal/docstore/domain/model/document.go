package model

import (
	"time"

	"panchayat-docstore/pkg/value"
)

const (
	// FieldID holds the backend identifier of a stored document.
	FieldID = "_id"
	// FieldPublicID mirrors FieldID in create responses.
	FieldPublicID  = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"

	// TimestampLayout is fixed width and UTC so timestamps sort lexicographically.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Timestamp formats t the way createdAt/updatedAt are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DocumentID returns the backend id stored in doc.
func DocumentID(doc *value.Object) string {
	v, ok := doc.Get(FieldID)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// Lookup resolves a dotted field path ("address.ward") inside doc.
func Lookup(doc *value.Object, field string) (value.Value, bool) {
	if v, ok := doc.Get(field); ok {
		return v, true
	}
	cur := doc
	start := 0
	for i := 0; i <= len(field); i++ {
		if i < len(field) && field[i] != '.' {
			continue
		}
		v, ok := cur.Get(field[start:i])
		if !ok {
			return value.Value{}, false
		}
		if i == len(field) {
			return v, true
		}
		next, ok := v.AsObject()
		if !ok {
			return value.Value{}, false
		}
		cur = next
		start = i + 1
	}
	return value.Value{}, false
}
