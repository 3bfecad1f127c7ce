package conversion

import "errors"

var (
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrStorageError = errors.New("storage error")
)
