package entities

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a field that was never supplied from one that was
// supplied, possibly as an explicit null. The zero value is unset.
type Optional[T any] struct {
	set bool
	val *T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, val: &v}
}

// Null returns a set Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// FromPtr returns a set Optional; a nil p means an explicit clear.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

// IsSet reports whether the caller supplied the field at all.
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was supplied as an explicit null.
func (o Optional[T]) IsNull() bool { return o.set && o.val == nil }

// Value returns the held value when the field is set and not null.
func (o Optional[T]) Value() (T, bool) {
	if o.val == nil {
		var zero T
		return zero, false
	}
	return *o.val, true
}

// Ptr returns a copy of the held value, or nil.
func (o Optional[T]) Ptr() *T {
	if o.val == nil {
		return nil
	}
	v := *o.val
	return &v
}

// OrZero returns the held value or the zero value of T.
func (o Optional[T]) OrZero() T {
	v, _ := o.Value()
	return v
}

func (o Optional[T]) applyTo(dst **T) {
	if o.set {
		*dst = o.Ptr()
	}
}

// UnmarshalJSON is only invoked for keys present in the document, so a
// missing key leaves the Optional unset while null marks it cleared.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.val = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.val = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.val == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.val)
}
