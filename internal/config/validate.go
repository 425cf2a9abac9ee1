package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate ensures the configuration is usable. Empty connection settings are
// accepted; see Missing.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return translateValidationError(err)
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateFTPS(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.Policy == "exponential" && c.Retry.IntervalSeconds <= 0 {
		return errors.New("retry.interval_seconds must be positive when retry.policy is exponential")
	}
	if c.Retry.MaxIntervalSeconds < c.Retry.IntervalSeconds {
		return errors.New("retry.max_interval_seconds must be >= retry.interval_seconds")
	}
	return nil
}

func (c *Config) validateFTPS() error {
	if c.FTPS.InsecureSkipVerify && strings.TrimSpace(c.FTPS.CAFile) != "" {
		return errors.New("ftps.ca_file has no effect when ftps.insecure_skip_verify is true; remove one of them")
	}
	return nil
}

func translateValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	fe := fieldErrs[0]
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "email":
		return fmt.Errorf("%s must be a valid email address (got %q)", key, fe.Value())
	case "hostname_rfc1123|ip":
		return fmt.Errorf("%s must be a hostname or IP address (got %q)", key, fe.Value())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s] (got %q)", key, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "min":
		return fmt.Errorf("%s must be >= %s", key, fe.Param())
	case "max":
		return fmt.Errorf("%s must be <= %s", key, fe.Param())
	default:
		return fmt.Errorf("%s failed %s validation", key, fe.Tag())
	}
}
