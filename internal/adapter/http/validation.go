package http

import (
	"math"
	"regexp"

	"library-backend/internal/domain/actor"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Kind    string       `json:"kind,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	// national ids, passports and member cards
	reIdent = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{2,31}$`)
)

var customRules = map[string]validator.Func{
	"hex32": func(fl validator.FieldLevel) bool { return reHex32.MatchString(fl.Field().String()) },
	"ident": func(fl validator.FieldLevel) bool { return reIdent.MatchString(fl.Field().String()) },
	"role": func(fl validator.FieldLevel) bool {
		_, ok := actor.ParseRole(fl.Field().String())
		return ok
	},
	// money amounts
	"dec2": func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Abs(f-math.Round(f*100)/100) < 1e-9
	},
}

var tagMessages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"hex32":    func(string) string { return "must be 32-char lowercase hex" },
	"ident":    func(string) string { return "must be 3-32 letters, digits or dashes" },
	"role":     func(string) string { return "must be admin or client" },
	"dec2":     func(string) string { return "must have at most 2 decimal places" },
	"datetime": func(p string) string { return "must be a date formatted " + p },
	"email":    func(string) string { return "must be a valid email" },
	"url":      func(string) string { return "must be a valid URL" },
	"gt":       func(p string) string { return "must be greater than " + p },
	"gte":      func(p string) string { return "must be greater than or equal to " + p },
	"lte":      func(p string) string { return "must be less than or equal to " + p },
	"min":      func(p string) string { return "length must be min " + p },
	"max":      func(p string) string { return "length must be max " + p },
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()
	for tag, fn := range customRules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// ToFieldErrors turns validator output into per-field messages. Anything
// else is reported against the "_" field.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		msg := e.Tag() + " validation failed"
		if fn, ok := tagMessages[e.Tag()]; ok {
			msg = fn(e.Param())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}
