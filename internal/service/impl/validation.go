package impl

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	maxEmailLength      = 254
	maxCodeLength       = 32
	maxNationalIDLength = 20
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("nationalid", func(fl validator.FieldLevel) bool {
		return isNationalID(fl.Field().String())
	})
	return v
}

func isNationalID(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func validEmail(email string) bool {
	return validate.Var(email, "required,max=254,email") == nil
}

func validNationalID(id string) bool {
	return validate.Var(strings.TrimSpace(id), "required,max=20,nationalid") == nil
}
