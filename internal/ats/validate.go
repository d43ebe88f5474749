package ats

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// fieldValidator returns the shared validator instance. Field names in error
// messages come from the form tag so they match the rendered inputs.
func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// checkStruct validates an input struct and converts failures into the
// per-field ValidationError rendered by the form pages.
func checkStruct(v any) error {
	err := fieldValidator().Struct(v)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("select at least %s", fe.Param())
		}
		return fmt.Sprintf("minimum length is %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// NormalizePhone strips formatting and a leading country prefix, requiring
// exactly ten digits.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	switch {
	case len(s) == 11 && s[0] == '0':
		s = s[1:]
	case len(s) == 12 && strings.HasPrefix(s, "91"):
		s = s[2:]
	}
	if len(s) != 10 {
		return "", newFieldError("phone", "must contain exactly 10 digits")
	}
	return s, nil
}

// normalizeLocations trims, dedupes, and drops empty entries while keeping
// first-seen order.
func normalizeLocations(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, loc := range in {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out
}
