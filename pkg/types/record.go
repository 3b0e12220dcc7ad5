package types

import (
	"bytes"
	"encoding/json"
)

// Record is one row: an open mapping from field name to scalar value.
// Its identity is its position in the owning collection.
type Record map[string]Value

// Get returns the value stored under field and whether it was present.
func (r Record) Get(field string) (Value, bool) {
	v, ok := r[field]
	return v, ok
}

// Text returns the display text of field, or "" when absent.
func (r Record) Text(field string) string {
	return r[field].Text()
}

// Clone returns a shallow copy of r. Values are immutable so this is a
// full copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge copies every entry of patch into r.
func (r Record) Merge(patch Record) {
	for k, v := range patch {
		r[k] = v
	}
}

// RecordOf builds a Record from plain Go values.
func RecordOf(m map[string]any) Record {
	r := make(Record, len(m))
	for k, v := range m {
		r[k] = ValueOf(v)
	}
	return r
}

// UnmarshalJSON decodes a JSON object into r, converting every member to
// a Value.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	if m == nil {
		*r = nil
		return nil
	}
	*r = RecordOf(m)
	return nil
}

// CloneRecords copies a slice of records.
func CloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
