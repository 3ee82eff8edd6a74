package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	email    = "email"
	gt       = "gt"
	gte      = "gte"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	oneof    = "oneof"
	required = "required"
	weblink  = "weblink"
	year     = "year"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func isNumeric(k reflect.Kind) bool {
	switch k { //nolint:exhaustive
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func plural(unit, n string) string {
	if n == "1" {
		return unit
	}
	return unit + "s"
}

func formatBound(field string, err validator.FieldError, comparison string) string {
	switch {
	case isNumeric(err.Kind()):
		return fmt.Sprintf("%q must be %s %s", field, comparison, err.Param())
	case err.Kind() == reflect.Slice:
		return fmt.Sprintf("%q length must be %s %s %s", field, comparison, err.Param(), plural("element", err.Param()))
	default:
		return fmt.Sprintf("%q length must be %s %s %s", field, comparison, err.Param(), plural("character", err.Param()))
	}
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case gt:
		return fmt.Sprintf("%q must be greater than %s", field, err.Param())
	case gte:
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	case mx:
		return formatBound(field, err, "less than or equal to")
	case mn:
		return formatBound(field, err, "greater than or equal to")
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	case weblink:
		return fmt.Sprintf("%q must start with http:// or https://", field)
	case year:
		return fmt.Sprintf("%q must be a whole number", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
