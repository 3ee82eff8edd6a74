package binder

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var yearRE = regexp.MustCompile(`^\d+$`)

// yearValidator accepts an all-digit string. The empty string passes so the
// field can be cleared; add `required` when it can't be.
func yearValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return yearRE.MatchString(value)
}

// weblinkValidator accepts http:// and https:// links, or the empty string.
func weblinkValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
