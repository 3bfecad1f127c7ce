package conversion

import "errors"

var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrConversionFailed = errors.New("conversion failed")
)
