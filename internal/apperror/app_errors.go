package apperror

import "errors"

var (
	ErrInvalidIndex   = errors.New("cell index out of range")
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidPayload = errors.New("invalid payload")
)
