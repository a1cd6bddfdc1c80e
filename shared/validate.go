package shared

import (
	"strings"

	"github.com/go-playground/validator"
)

// NewValidator returns a validator with the custom tags used across swiftly registered.
func NewValidator() *validator.Validate {
	validate := validator.New()

	// 'notblank' rejects empty & whitespace only strings
	err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic(err)
	}

	return validate
}
