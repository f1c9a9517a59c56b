// Package validation contains custom validation functions for the application to use for input validation.
//
// Validation is limited to presence checks: a draft needs a name, a login needs a username and a password,
// and a status must be one of the two known values. Shell commands also check row numbers and switches.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the custom validations registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("fieldValidator", FieldValidator)
		validate.RegisterValidation("statusValidator", StatusValidator)
	})
	return validate
}

// Struct validates v and turns the first failing field into a readable error.
//
// Returns:
// - error: nil when v is valid, otherwise an error such as "name is required".
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "fieldValidator":
			return fmt.Errorf("%s is required", field)
		case "statusValidator":
			return fmt.Errorf("%s must be 0 (pending) or 1 (done)", field)
		case "gte":
			return fmt.Errorf("%s must be at least %s", field, fe.Param())
		case "oneof":
			return fmt.Errorf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
		}
		return fmt.Errorf("%s is invalid", field)
	}
	return err
}

// StatusValidator accepts the two task statuses, 0 (pending) and 1 (done).
func StatusValidator(fl validator.FieldLevel) bool {
	value := fl.Field().Int()
	return value == 0 || value == 1
}

// FieldValidator is a validation function that checks if the field value is blank.
// It returns true if the field value contains anything besides whitespace, and false otherwise.
func FieldValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
