package config

import (
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	cmdNamePattern = regexp.MustCompile(`^[A-Za-z0-9._/\\:-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(fieldName)

		_ = v.RegisterValidation("hostport", func(fl validator.FieldLevel) bool {
			host, port, err := net.SplitHostPort(fl.Field().String())
			if err != nil || host == "" {
				return false
			}
			n, err := strconv.Atoi(port)
			return err == nil && n > 0 && n < 65536
		})

		_ = v.RegisterValidation("cmdname", func(fl validator.FieldLevel) bool {
			return cmdNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// fieldName reports a field by its yaml key, falling back to its json key so
// request structs decoded from JSON validate with the same instance.
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"yaml", "json"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return field.Name
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// GetValidator returns the shared validator instance for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

// Validate performs schema validation on the configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return hderrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}
	return nil
}

// convertValidationError normalizes validator errors into hardhatdesk validation errors.
func convertValidationError(err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := fieldPath(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return hderrors.NewValidationError(field, msg, err)
	}

	return hderrors.NewValidationError("config", err.Error(), err)
}

// fieldPath drops the root struct name from the yaml-tag namespace.
func fieldPath(fe validator.FieldError) string {
	parts := strings.SplitN(fe.Namespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return parts[0]
}
