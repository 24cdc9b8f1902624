package types

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a configuration that can never work, such as an
// unknown combination token or a missing required parameter. Kind is one of the
// sentinel errors of the package that raised it.
type ConfigurationError struct {
	Kind   error
	Detail string
}

// NewConfigurationError builds a ConfigurationError of the given kind.
func NewConfigurationError(kind error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Kind == nil {
		return "configuration error: " + e.Detail
	}
	if e.Detail == "" {
		return "configuration error: " + e.Kind.Error()
	}
	return "configuration error: " + e.Kind.Error() + ": " + e.Detail
}

func (e *ConfigurationError) Unwrap() error { return e.Kind }

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
