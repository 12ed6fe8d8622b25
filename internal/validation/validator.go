// Package validation checks request structs with validator/v10 and turns
// failures into domain validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
)

// usernamePattern is the account name alphabet: letters, digits and @.+-_
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports JSON field names and knows the
// "username" tag.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate checks s. Failures come back as a single Validation error whose
// details map each offending field to a message.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = message(fe)
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "":
		return fld.Name
	case "-":
		return ""
	}
	return name
}

// messages maps a tag to its wording. A trailing space means the tag
// parameter is appended.
var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"username": "may contain only letters, digits and @.+-_",
	"oneof":    "must be one of: ",
	"gte":      "must be greater than or equal to ",
	"lte":      "must be less than or equal to ",
}

func message(fe validator.FieldError) string {
	tag := fe.Tag()
	switch tag {
	case "min", "max", "len":
		return boundMessage(tag, fe.Param(), countsCharacters(fe.Kind()))
	}
	if m, ok := messages[tag]; ok {
		if strings.HasSuffix(m, " ") {
			return m + fe.Param()
		}
		return m
	}
	return "is invalid"
}

func boundMessage(tag, param string, chars bool) string {
	var m string
	switch tag {
	case "min":
		m = "must be at least " + param
	case "max":
		m = "must not exceed " + param
	default:
		m = "must be exactly " + param
	}
	if chars {
		m += " characters"
	}
	return m
}

// countsCharacters reports whether length tags on kind refer to a string length.
func countsCharacters(k reflect.Kind) bool {
	return k == reflect.String
}
