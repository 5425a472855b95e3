// Package validation holds the shared go-playground validator instance.
// Field names in reported errors come from the `env` tag when present,
// then the `json` tag, then the Go field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the process-wide validator. Safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// FieldError is a single failed rule, described for humans.
type FieldError struct {
	Field string
	Value any
	Rule  string
	Param string
}

func (e FieldError) Error() string {
	switch e.Rule {
	case "oneof":
		return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Field, fmt.Sprint(e.Value), strings.ReplaceAll(e.Param, " ", ", "))
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "datetime":
		return fmt.Sprintf("invalid %s %q (expected %s)", e.Field, fmt.Sprint(e.Value), layoutHint(e.Param))
	default:
		return fmt.Sprintf("invalid %s %v (%s %s)", e.Field, e.Value, e.Rule, e.Param)
	}
}

// Struct validates s and returns the first failing field as a FieldError.
// Non-validation failures (e.g. passing a non-struct) are returned as-is.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return FieldError{
		Field: fe.Field(),
		Value: fe.Value(),
		Rule:  fe.Tag(),
		Param: fe.Param(),
	}
}

func layoutHint(layout string) string {
	if layout == "2006-01-02" {
		return "YYYY-MM-DD"
	}
	return layout
}
