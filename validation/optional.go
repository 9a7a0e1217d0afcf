package validation

import (
	"bytes"
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

// Optional distinguishes the three states of a partial-update field:
//
//	omitted        -> Set=false            (leave unchanged)
//	"field": null  -> Set=true, Null=true  (clear)
//	"field": value -> Set=true             (assign)
//
// Validation tags on an Optional field apply to Value only when a value was sent,
// so combine them with omitempty.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

// Clear returns an Optional that asks for the field to be cleared.
func Clear[T any]() Optional[T] { return Optional[T]{Set: true, Null: true} }

// UnmarshalJSON implements json.Unmarshaler. It is only called for keys present in the body.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// HasValue reports whether a concrete value was supplied.
func (o Optional[T]) HasValue() bool { return o.Set && !o.Null }

// Ptr returns nil for omitted or cleared fields and a pointer to Value otherwise.
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}

func (o Optional[T]) validationValue() any {
	if !o.HasValue() {
		return nil
	}
	return o.Value
}

type optionalValuer interface {
	validationValue() any
}

// registerOptionalTypes tells the validator to look through Optional wrappers.
// Each instantiation in use must be listed here.
func registerOptionalTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if ov, ok := field.Interface().(optionalValuer); ok {
			return ov.validationValue()
		}
		return nil
	},
		Optional[string]{},
		Optional[int]{},
		Optional[int64]{},
		Optional[float64]{},
		Optional[[]int64]{},
		Optional[time.Time]{},
	)
}
