// Package validate holds the single validator instance shared by gin request
// binding and the services. Rules are written as `binding` struct tags.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/todo-service/internal/apperr"
)

// TagName is the struct tag the rules are read from, as in gin.
const TagName = "binding"

var (
	once   sync.Once
	engine *validator.Validate
)

// Engine returns the shared validator.
func Engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName(TagName)
		v.RegisterTagNameFunc(jsonName)
		// maxbytes bounds the encoded length of a string; max counts runes.
		if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic(err)
		}
		engine = v
	})
	return engine
}

// Struct validates s and returns an apperr validation error naming the
// first failing field.
func Struct(s any) error {
	return Describe(Engine().Struct(s))
}

// Field validates a single value against tag, reporting failures under name.
func Field(name string, value any, tag string) error {
	err := Engine().Var(value, tag)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Wrap(apperr.CodeValidation, message(name, verrs[0]), err)
	}
	return err
}

// Describe converts validator errors into an apperr validation error.
// Other errors are returned unchanged.
func Describe(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Wrap(apperr.CodeValidation, message(verrs[0].Field(), verrs[0]), err)
	}
	return err
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return field + " is invalid"
	}
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
