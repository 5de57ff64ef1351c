package domain

import (
	"bytes"
	"encoding/json"
)

// Field distinguishes "not supplied" from a supplied value, including an
// explicit JSON null, in partial updates.
type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a supplied field.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// IsZero reports an unsupplied field so `omitzero` leaves it out of encoded
// updates.
func (f Field[T]) IsZero() bool {
	return !f.Set
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
