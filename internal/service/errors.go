package service

import "errors"

var (
	// ErrNotFound is returned when the requested row or object does not exist
	ErrNotFound = errors.New("not found")
	// ErrBadCredentials is returned by Login on a username or password mismatch
	ErrBadCredentials = errors.New("bad credentials")
	// ErrUnknownResource is returned for an export of an unsupported resource
	ErrUnknownResource = errors.New("unknown resource")
	// ErrUnsupportedFormat is returned for an export in an unsupported format
	ErrUnsupportedFormat = errors.New("unsupported format")
)
