package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicate           = errors.New("duplicate entry")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
