package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"panchayat-docstore/pkg/value"
)

const (
	idField        = "id"
	backendIDField = "_id"
)

// DocumentSnapshot is the normalized result of reading one document.
type DocumentSnapshot struct {
	id   string
	ref  DocumentRef
	data *value.Object
}

// ID is the document id. It is set even when the document does not exist.
func (s *DocumentSnapshot) ID() string { return s.id }

// Ref is the reference the snapshot was read from.
func (s *DocumentSnapshot) Ref() DocumentRef { return s.ref }

// Exists reports whether the document was found.
func (s *DocumentSnapshot) Exists() bool { return s.data != nil }

// Data returns the stored fields with "id" set to the document id, or nil when
// the document does not exist. Each call returns a fresh map.
func (s *DocumentSnapshot) Data() map[string]any {
	if s.data == nil {
		return nil
	}
	return s.data.Map()
}

// Object is Data with the stored key order preserved.
func (s *DocumentSnapshot) Object() *value.Object {
	if s.data == nil {
		return nil
	}
	return s.data.Clone()
}

// Get returns one top-level field.
func (s *DocumentSnapshot) Get(field string) (any, bool) {
	v, ok := s.data.Get(field)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// DataTo decodes the document into out, which must be a pointer.
func (s *DocumentSnapshot) DataTo(out any) error {
	if s.data == nil {
		return fmt.Errorf("docstore: document %q does not exist", s.ref.Path())
	}
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// QuerySnapshot holds the documents returned by a list request. Docs is never nil.
type QuerySnapshot struct {
	Docs []*DocumentSnapshot
}

func (q *QuerySnapshot) Size() int   { return len(q.Docs) }
func (q *QuerySnapshot) Empty() bool { return len(q.Docs) == 0 }

func missingSnapshot(ref DocumentRef) *DocumentSnapshot {
	return &DocumentSnapshot{id: ref.ID(), ref: ref}
}

// newDocumentSnapshot normalizes a raw wire document. The id comes from "_id",
// then "id", then the reference the caller asked for. A stored "id" field is
// replaced by the document id in data.
func newDocumentSnapshot(raw *value.Object, parent string, fallback DocumentRef) *DocumentSnapshot {
	id := documentID(raw)
	if id == "" {
		id = fallback.ID()
	}

	data := raw.Clone()
	data.Delete(backendIDField)
	data.Set(idField, value.String(id))

	ref := fallback
	if parent != "" {
		ref = Doc(Seg(parent), Seg(id))
	}
	return &DocumentSnapshot{id: id, ref: ref, data: data}
}

func documentID(raw *value.Object) string {
	if id := backendID(raw); id != "" {
		return id
	}
	// create responses and backends without "_id" carry the id as "id"
	if v, ok := raw.Get(idField); ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

func backendID(raw *value.Object) string {
	v, ok := raw.Get(backendIDField)
	if !ok {
		return ""
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	// extended JSON: {"$oid": "..."}
	if o, ok := v.AsObject(); ok {
		if oid, ok := o.Get("$oid"); ok {
			s, _ := oid.AsString()
			return s
		}
	}
	if v.IsIntegral() {
		n, _ := v.AsNumber()
		return fmt.Sprintf("%d", int64(n))
	}
	return ""
}

func newQuerySnapshot(raws []*value.Object, collection string) *QuerySnapshot {
	docs := make([]*DocumentSnapshot, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		docs = append(docs, newDocumentSnapshot(raw, collection, DocumentRef{}))
	}
	return &QuerySnapshot{Docs: docs}
}

// APIError is a non-2xx answer from the store service.
type APIError struct {
	StatusCode int    `json:"-"`
	Method     string `json:"-"`
	URL        string `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("docstore: %s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("docstore: %s %s: %d: %s", e.Method, e.URL, e.StatusCode, msg)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is an APIError with status 401 or 403.
func IsUnauthorized(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
