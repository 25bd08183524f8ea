package api

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"

	"github.com/nhle/todo-service/internal/validate"
)

func init() {
	binding.Validator = structValidator{}
}

// structValidator routes gin request binding through the shared validator
// so handlers and services enforce the same rules.
type structValidator struct{}

func (v structValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		return validate.Engine().Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (structValidator) Engine() any {
	return validate.Engine()
}
