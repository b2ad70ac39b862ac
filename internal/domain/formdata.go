package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FormData is the submitted value bag of a dynamic registration form: an
// ordered map of field name to value. Values are the JSON variants produced
// by form submission (string, number, bool, string list, or a nested object
// such as a signature payload). Insertion order is preserved through both
// JSON and BSON round-trips so exports render columns in form order.
type FormData struct {
	keys   []string
	values map[string]any
}

// NewFormData returns an empty FormData.
func NewFormData() FormData {
	return FormData{values: make(map[string]any)}
}

// Set stores a value, appending the key on first insertion.
func (d *FormData) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value for key and whether it is present.
func (d *FormData) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the field names in insertion order.
func (d *FormData) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of fields.
func (d *FormData) Len() int { return len(d.keys) }

// Clone returns a shallow copy with independent key bookkeeping.
func (d FormData) Clone() FormData {
	out := FormData{
		keys:   make([]string, len(d.keys)),
		values: make(map[string]any, len(d.values)),
	}
	copy(out.keys, d.keys)
	for k, v := range d.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON renders the data as a JSON object in insertion order.
func (d FormData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (d *FormData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("registration data must be a JSON object")
	}

	d.keys = nil
	d.values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in registration data", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		d.Set(key, normalizeJSONValue(value))
	}
	_, err = dec.Token() // consume closing brace
	return err
}

// MarshalBSONValue stores the data as an ordered BSON document.
func (d FormData) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := make(bson.D, 0, len(d.keys))
	for _, k := range d.keys {
		doc = append(doc, bson.E{Key: k, Value: d.values[k]})
	}
	return bson.MarshalValue(doc)
}

// UnmarshalBSONValue reads an embedded document preserving element order.
func (d *FormData) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null {
		*d = NewFormData()
		return nil
	}
	raw := bson.RawValue{Type: t, Value: data}
	var doc bson.D
	if err := raw.Unmarshal(&doc); err != nil {
		return fmt.Errorf("decode registration data: %w", err)
	}
	d.keys = nil
	d.values = make(map[string]any, len(doc))
	for _, el := range doc {
		d.Set(el.Key, el.Value)
	}
	return nil
}

// normalizeJSONValue converts json.Number to float64 and recurses into
// containers so callers see uniform variant types.
func normalizeJSONValue(v any) any {
	switch tv := v.(type) {
	case json.Number:
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return tv.String()
	case []any:
		for i, e := range tv {
			tv[i] = normalizeJSONValue(e)
		}
		return tv
	case map[string]any:
		for k, e := range tv {
			tv[k] = normalizeJSONValue(e)
		}
		return tv
	default:
		return v
	}
}
