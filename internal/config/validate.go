package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their TOML names so errors match the config file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the merged configuration. All problems are reported in a
// single joined error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return c.validateLayout()
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make([]error, 0, len(fieldErrs)+1)
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s: %s", fieldPath(fe.Namespace()), describe(fe)))
	}
	if err := c.validateLayout(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateLayout checks the cross-field rule that the base font must be
// legible on its own.
func (c *Config) validateLayout() error {
	if c.Layout.BaseFont > 0 && c.Layout.MinFont > c.Layout.BaseFont {
		return fmt.Errorf("layout.min_font: %d is larger than layout.base_font (%d)", c.Layout.MinFont, c.Layout.BaseFont)
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return "is required"
	case "oneof":
		return fmt.Sprintf("%v is not one of [%s]", fe.Value(), fe.Param())
	case "gte":
		return fmt.Sprintf("%v must be at least %s", fe.Value(), fe.Param())
	case "lte":
		return fmt.Sprintf("%v must be at most %s", fe.Value(), fe.Param())
	case "gt":
		return fmt.Sprintf("%v must be greater than %s", fe.Value(), fe.Param())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
