package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single key/value pair of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object is a key-ordered map of string to Value.
type Object struct {
	fields []Field
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

// ObjectFromMap converts a plain map, ordering keys alphabetically.
func ObjectFromMap(m map[string]any) (*Object, error) {
	v, err := FromAny(m)
	if err != nil {
		return nil, err
	}
	o, _ := v.AsObject()
	return o, nil
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

func (o *Object) index(key string) int {
	if o == nil {
		return -1
	}
	for i, f := range o.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if i := o.index(key); i >= 0 {
		return o.fields[i].Value, true
	}
	return Value{}, false
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool { return o.index(key) >= 0 }

// Set stores v under key, keeping the position of an existing key.
func (o *Object) Set(key string, v Value) {
	if i := o.index(key); i >= 0 {
		o.fields[i].Value = v
		return
	}
	o.fields = append(o.fields, Field{Key: key, Value: v})
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i := o.index(key)
	if i < 0 {
		return false
	}
	o.fields = append(o.fields[:i], o.fields[i+1:]...)
	return true
}

// Keys returns the keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	if o == nil {
		return keys
	}
	for _, f := range o.fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Fields returns a copy of the fields in order.
func (o *Object) Fields() []Field {
	if o == nil {
		return nil
	}
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	out := NewObject()
	if o == nil {
		return out
	}
	out.fields = make([]Field, len(o.fields))
	for i, f := range o.fields {
		out.fields[i] = Field{Key: f.Key, Value: cloneValue(f.Value)}
	}
	return out
}

func cloneValue(v Value) Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = cloneValue(item)
		}
		return Array(items...)
	case KindObject:
		return FromObject(v.obj.Clone())
	default:
		return v
	}
}

// Merge copies every field of other into o, overwriting existing keys.
func (o *Object) Merge(other *Object) {
	if other == nil {
		return
	}
	for _, f := range other.fields {
		o.Set(f.Key, cloneValue(f.Value))
	}
}

// Map converts the object into a plain map.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, o.Len())
	if o == nil {
		return out
	}
	for _, f := range o.fields {
		out[f.Key] = f.Value.Interface()
	}
	return out
}

// MarshalJSON writes the fields in order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if o != nil {
		for i, f := range o.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Key, err)
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Duplicate keys keep the
// first position and the last value.
func (o *Object) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	obj, ok := v.AsObject()
	if !ok {
		return fmt.Errorf("value: expected JSON object, got %v", v.Kind())
	}
	o.fields = obj.fields
	return nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return FromAny(t)
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(items...), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: object key is %T", keyTok)
				}
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return FromObject(obj), nil
		}
	}
	return Value{}, fmt.Errorf("value: unexpected token %v", tok)
}
