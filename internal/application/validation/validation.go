// Package validation wraps go-playground/validator with the rules shared by the use cases.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
)

// ErrValidation marks input that was rejected before any side effect.
var ErrValidation = errors.New("validation failed")

var uzPhone = regexp.MustCompile(`^(\+?998\d{9}|\d{9})$`)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("uzphone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// ValidPhone accepts +998XXXXXXXXX, 998XXXXXXXXX and 9-digit local numbers.
func ValidPhone(phone string) bool {
	return uzPhone.MatchString(profile.NormalizePhone(phone))
}

// Struct validates v and reports every failing field in one error wrapping ErrValidation.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

// Wrap marks a domain error as a validation failure.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func fieldMessage(fe validator.FieldError) string {
	name := toSnake(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return name + " is required"
	case "uzphone":
		return name + " must be a valid phone number"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "gte", "min":
		return name + " must be at least " + fe.Param()
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "numeric":
		return name + " must be numeric"
	}
	return name + " is invalid"
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
