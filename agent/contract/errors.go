package contract

import "errors"

var (
	ErrLockTimeout    = errors.New("lock acquisition timed out")
	ErrNotFound       = errors.New("not found")
	ErrCorruptPayload = errors.New("corrupt payload")
	ErrValidation     = errors.New("validation failed")
	ErrUpstream       = errors.New("upstream call failed")
)
