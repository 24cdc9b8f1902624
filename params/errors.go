package params

import "errors"

// Common params errors
var (
	// ErrMissingKey indicates a required key is absent
	ErrMissingKey = errors.New("missing required parameter")

	// ErrWrongType indicates a value that cannot be read as the requested type
	ErrWrongType = errors.New("wrong parameter type")

	// ErrInvalidChoice indicates a value outside the allowed choices
	ErrInvalidChoice = errors.New("invalid parameter choice")

	// ErrExtraParameters indicates keys left over after construction
	ErrExtraParameters = errors.New("extra parameters")

	// ErrUnsupportedFormat indicates a config file with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported config format")
)
