package dto

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validate checks the validate tags of every request DTO. It is shared by
// the HTTP handlers and the assistant, which decodes the same structs from
// tool-call arguments.
var Validate = validator.New()

func init() {
	// decimal.Decimal validates as a number so min=0, gt=0 and required work on money fields.
	Validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// CamposInvalidos flattens validator errors into field → failed tag.
func CamposInvalidos(err error) map[string]string {
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
