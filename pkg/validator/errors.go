package validator

import "errors"

var (
	ErrEmptyURL      = errors.New("URL cannot be empty")
	ErrInvalidURL    = errors.New("invalid URL format")
	ErrMissingScheme = errors.New("URL must be absolute and include a scheme")
	ErrInvalidHost   = errors.New("URL must have a valid host")
)
