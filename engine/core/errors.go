package core

import (
	"errors"
)

var (
	ErrAnimationNotFound = errors.New("animation not found")
	ErrInvalidAnimation  = errors.New("invalid animation")
	ErrInvalidNode       = errors.New("invalid serialization node")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknown           = errors.New("unknown")
)
