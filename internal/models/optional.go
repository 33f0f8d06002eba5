package models

import "encoding/json"

// Opt is a presence-tracked optional field for partial updates. A field
// absent from the request leaves Set false; an explicit null or zero value
// still marks it Set, so "not supplied" and "cleared" stay distinguishable.
type Opt[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: v}
}

// UnmarshalJSON marks the field present and decodes into Value. JSON null
// marks the field present with the zero value.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON encodes the held value; absent fields encode as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
