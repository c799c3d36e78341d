package errors

import "errors"

var (
	ErrNodeNotFound       = errors.New("tenant node not found")
	ErrInvalidNode        = errors.New("invalid tenant node")
	ErrInvalidCallbackURL = errors.New("callback url must be http or https")
)
