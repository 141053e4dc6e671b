package http

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/flowboard/core/internal/domain/entities"
)

// NewValidator returns the request validator. Optional fields are validated
// by their held value; unset and null fields count as empty.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(optionalValue[string], entities.Optional[string]{})
	v.RegisterCustomTypeFunc(optionalValue[float64], entities.Optional[float64]{})
	v.RegisterCustomTypeFunc(optionalValue[int64], entities.Optional[int64]{})
	v.RegisterCustomTypeFunc(optionalValue[entities.Level], entities.Optional[entities.Level]{})
	v.RegisterCustomTypeFunc(optionalValue[entities.PriorityLevel], entities.Optional[entities.PriorityLevel]{})
	v.RegisterCustomTypeFunc(optionalValue[entities.CardLevel], entities.Optional[entities.CardLevel]{})
	return v
}

func optionalValue[T any](field reflect.Value) interface{} {
	o, ok := field.Interface().(entities.Optional[T])
	if !ok {
		return nil
	}
	return o.Ptr()
}
