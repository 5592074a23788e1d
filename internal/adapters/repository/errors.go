package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("player not found")
	ErrDuplicate   = errors.New("player already exists")
	ErrUnavailable = errors.New("score store unavailable")
	ErrBadPatch    = errors.New("invalid patch")
	ErrUnknownKind = errors.New("unknown store driver")
)
