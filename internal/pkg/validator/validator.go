// Package validator wraps go-playground/validator with the API's enum tags
// and turns validation failures into per-field messages keyed by JSON name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

// enums are the closed vocabularies the request DTOs refer to by tag.
var enums = map[string][]string{
	"role":           {"guest", "owner"},
	"subtype":        {"house", "apartment", "hotel"},
	"offer_kind":     {"percentage", "fixed_amount"},
	"offer_status":   {"active", "paused"},
	"payment_method": {"card", "pse", "cash", "transfer"},
}

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, values := range enums {
		allowed := values
		mustRegister(v, tag, func(fl validator.FieldLevel) bool {
			return slices.Contains(allowed, fl.Field().String())
		})
	}
	mustRegister(v, "date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validator: register %s: %v", tag, err))
	}
}

// Validate checks s and returns one message per failing field, or nil.
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	if values, ok := enums[fe.Tag()]; ok {
		return "Must be one of: " + strings.Join(values, ", ")
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short (min: " + fe.Param() + ")"
	case "max":
		return "Value is too long (max: " + fe.Param() + ")"
	case "gt", "gte":
		return "Value must be at least " + fe.Param()
	case "lte":
		return "Value must be at most " + fe.Param()
	case "uuid":
		return "Invalid identifier"
	case "date":
		return "Invalid date. Use YYYY-MM-DD"
	default:
		return "Invalid value"
	}
}
