package core

import "github.com/pkg/errors"

// Errors returned by resource acquisition and configuration. Operations wrap
// them with context; match with errors.Is.
var (
	ErrInvalidID        = errors.New("invalid id")
	ErrAlreadyReserved  = errors.New("already reserved")
	ErrAlreadyBound     = errors.New("already bound")
	ErrEmptyAction      = errors.New("empty action")
	ErrInvalidParameter = errors.New("invalid parameter")
)
