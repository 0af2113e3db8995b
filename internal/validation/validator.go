// Package validation holds the struct validator shared by the configuration layer and the
// action constructors.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern     = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// ActionTypes lists every action type a test definition may reference.
var ActionTypes = []string{
	"echo", "sleep", "create-variables", "trace-variables", "fail", "send", "receive", "purge-endpoint",
	"sequential", "parallel", "iterate", "repeat-on-error", "repeat", "conditional",
}

// Instance returns the shared validator with the custom tags registered.
func Instance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("action_type", func(fl validator.FieldLevel) bool {
			return IsActionType(fl.Field().String())
		})

		// Durations are either Go duration strings or plain milliseconds.
		_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if value == "" {
				return true
			}
			_, err := ParseDuration(value)
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// Struct validates v and converts the first violation into a ValidationError.
func Struct(v any) error {
	if err := Instance().Struct(v); err != nil {
		return convert(err)
	}
	return nil
}

// IsActionType reports whether name is a known action type.
func IsActionType(name string) bool {
	for _, candidate := range ActionTypes {
		if candidate == name {
			return true
		}
	}
	return false
}

// ParseDuration accepts "1500" (milliseconds) as well as Go duration strings such as "1.5s".
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative duration %q", value)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}

func convert(err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := fieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return citrineerrors.NewValidationError(field, msg, err)
	}

	return citrineerrors.NewValidationError("", err.Error(), err)
}

func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
