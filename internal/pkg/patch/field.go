// Package patch models partial-update request fields.
//
// A Field distinguishes three states that a plain pointer cannot: the key was
// absent from the request, the key was present with an explicit null, or the
// key carried a value.
package patch

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of returns a Field holding v.
func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// Null returns a Field that clears the column.
func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }

// UnmarshalJSON is only invoked when the key is present, which is what marks
// the field as Set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// HasValue reports whether the field carries a non-null value.
func (f Field[T]) HasValue() bool { return f.Set && !f.Null }

// Ptr returns nil for explicit null, otherwise a pointer to the value.
// Callers check Set first.
func (f Field[T]) Ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// Apply writes the field into updates under column when it is Set.
func (f Field[T]) Apply(updates map[string]interface{}, column string) {
	if !f.Set {
		return
	}
	if f.Null {
		updates[column] = nil
		return
	}
	updates[column] = f.Value
}
