package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the day-first format accepted for dates in service inputs.
const DateLayout = "02/01/2006"

const passwordSpecials = "@$!%*?&"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// IsStrongPassword reports whether p is 8 to 30 characters drawn from ASCII
// letters, digits and @$!%*?&, with at least one of each class.
func IsStrongPassword(p string) bool {
	if len(p) < 8 || len(p) > 30 {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return upper && lower && digit && special
}

// validateStruct runs the validator and converts failures to
// *common.ValidationError keyed by json field name.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &common.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "datetime":
		return "must be a date in DD/MM/YYYY format"
	case "password":
		return "must be 8-30 characters and contain uppercase, lowercase, digits and one of " + passwordSpecials
	case "url":
		return "must be a valid URL"
	case "ltecsfield", "gtecsfield", "gtefield":
		return "is out of range"
	default:
		return "is invalid"
	}
}
