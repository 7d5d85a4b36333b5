package impl

import "errors"

var (
	ErrNilStore      = errors.New("nil store")
	ErrEmptyPassword = errors.New("empty password")
)
