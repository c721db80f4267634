// ABOUTME: Generic optional field used by partial-update (patch) types.
// ABOUTME: Distinguishes absent, present-null and present-value, including through JSON.
package models

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
)

// Field is one updatable value in a patch. The zero Field is absent.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Value returns a present Field holding v.
func Value[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Null returns a present Field that clears the target.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// Present reports whether the field was supplied at all (value or null).
func (f Field[T]) Present() bool {
	return f.set
}

// IsNull reports whether the field was supplied as an explicit null.
func (f Field[T]) IsNull() bool {
	return f.set && f.null
}

// Get returns the value and whether a non-null value is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set && !f.null
}

// Ptr returns a pointer to a copy of the value, or nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.set || f.null {
		return nil
	}
	v := f.value
	return &v
}

// IsZero lets `omitzero` drop absent fields when marshalling.
func (f Field[T]) IsZero() bool {
	return !f.set
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if string(data) == "null" {
		var zero T
		f.value = zero
		f.null = true
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

// applyRequired copies a present value into dst. Null is rejected because
// the target field is mandatory.
func applyRequired[T any](errs *error, name string, f Field[T], dst *T) {
	if !f.set {
		return
	}
	if f.null {
		*errs = multierr.Append(*errs, fmt.Errorf("%s cannot be cleared", name))
		return
	}
	*dst = f.value
}

// applyOptional copies a present value into dst, or clears dst on null.
func applyOptional[T any](f Field[T], dst **T) {
	if !f.set {
		return
	}
	*dst = f.Ptr()
}
