package types

import (
	"bytes"
	"encoding/json"
)

// Optional is a three-state value for partial updates. It distinguishes a
// field that was omitted from the payload from one explicitly set to null
// (cleared) and from one carrying a value.
type Optional[T any] struct {
	provided bool
	cleared  bool
	value    T
}

// Some returns an Optional carrying the given value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{provided: true, value: v}
}

// Cleared returns an Optional that was explicitly set to null.
func Cleared[T any]() Optional[T] {
	return Optional[T]{provided: true, cleared: true}
}

// Provided reports whether the field appeared in the payload at all.
func (o Optional[T]) Provided() bool { return o.provided }

// IsCleared reports whether the field was explicitly set to null.
func (o Optional[T]) IsCleared() bool { return o.provided && o.cleared }

// Value returns the carried value and whether one is present.
func (o Optional[T]) Value() (T, bool) {
	if !o.provided || o.cleared {
		var zero T
		return zero, false
	}
	return o.value, true
}

// UnmarshalJSON is only invoked when the key is present, so a decoded
// Optional is always in the cleared or value state; the zero Optional is
// the omitted state.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.provided = true
	if bytes.Equal(data, []byte("null")) {
		o.cleared = true
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.provided || o.cleared {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
