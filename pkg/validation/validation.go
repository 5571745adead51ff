// Package validation wraps go-playground/validator with the custom tags
// the receipt API needs and renders the first failure as a field-level
// message suitable for a 400 body.
package validation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "pactum/pkg/domain-errors"
	s "pactum/pkg/string"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// ed25519key accepts the standard base64 form of a 32-byte public key.
	_ = v.RegisterValidation("ed25519key", func(fl validator.FieldLevel) bool {
		raw, err := base64.StdEncoding.DecodeString(fl.Field().String())
		return err == nil && len(raw) == 32
	})
	return v
}

// Validate runs struct tags against req and converts the outcome into a
// coded domain error.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage renders the first validation failure. One message per
// response keeps clients from parsing failure lists.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid uuid", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "ed25519key":
		return fmt.Sprintf("%s must be a base64 ed25519 public key", field)
	case "base64":
		return fmt.Sprintf("%s must be base64 encoded", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
