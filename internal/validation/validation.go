// Package validation holds the shared request validator and its custom rules.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// MaxBioLen is the character ceiling for a profile bio.
const MaxBioLen = 160

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("username", validateUsername)
}

// validateUsername restricts usernames to letters, digits, and underscores.
// Length bounds are expressed with min/max tags alongside this rule.
func validateUsername(fl validator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}

// Struct validates the struct's fields against their validate tags.
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// FieldErrors maps a validator error to per-field messages keyed by the
// struct's JSON-ish lowercase field name. Returns nil for other error kinds.
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[lowerFirst(fe.Field())] = messageFor(fe)
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "too short (minimum " + fe.Param() + " characters)"
	case "max":
		return "too long (maximum " + fe.Param() + " characters)"
	case "username":
		return "may only contain letters, numbers, and underscores"
	default:
		return "invalid value"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
