package errors

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionConflict = errors.New("subscription write conflict")
	ErrInvalidStatus        = errors.New("invalid subscription status")
	ErrInvalidRequest       = errors.New("invalid subscription request")
)
