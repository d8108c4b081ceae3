package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	usernameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*_-"
	nicknameChars = usernameChars + "."
	letters       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits        = "0123456789"
	specialChars  = "!@#$%^&*"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("username", validateUsername)
	_ = validate.RegisterValidation("password", validatePassword)
	_ = validate.RegisterValidation("nickname", validateNickname)
	validate.RegisterTagNameFunc(useJSONTagNames)
	return validate
}

// Return on 'TagName' json tag instead of struct name
// Look at documentation of 'RegisterTagNameFunc' for more details
func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func onlyOf(value string, allowed string) bool {
	for _, r := range value {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}

// Latin letters, digits and !@#$%^&*_-
func validateUsername(fl validator.FieldLevel) bool {
	return onlyOf(fl.Field().String(), usernameChars)
}

// At least one letter, one digit and one of !@#$%^&*
func validatePassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.ContainsAny(value, letters) &&
		strings.ContainsAny(value, digits) &&
		strings.ContainsAny(value, specialChars)
}

// Letters required, digits and !@#$%^&*_-. allowed
func validateNickname(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.ContainsAny(value, letters) && onlyOf(value, nicknameChars)
}
