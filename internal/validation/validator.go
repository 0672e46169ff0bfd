// Package validation checks request payloads with go-playground/validator and
// reports the first failing field as an apperr validation error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/apperr"
)

// FieldError names the field that failed and why.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator wraps validator.Validate with the API's tags and messages.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports JSON field names and knows the
// "objectid" tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Errors only surface for malformed tags, which is a programming error.
	if err := v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Validator{v: v}
}

// Validate checks s and returns nil or an *apperr.Error for the first bad field.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal("validate request", err)
	}
	first := fieldErrs[0]
	msg := fmt.Sprintf("%q %s", first.Field(), friendlyMessage(first))
	return apperr.Validation(msg).WithDetails(FieldError{Field: first.Field(), Message: msg})
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "objectid":
		return "must be a valid id"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("length must be at least %s characters long", e.Param())
		}
		return "must be greater than or equal to " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("length must be less than or equal to %s characters long", e.Param())
		}
		return "must be less than or equal to " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
