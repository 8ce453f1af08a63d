package router

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator with the password rule
// registered.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("password", passwordRule)
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// passwordRule mirrors the account password complexity requirements:
// at least 6 characters including upper-case, lower-case and digit.
func passwordRule(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 6 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
