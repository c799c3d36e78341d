package errors

import "errors"

var (
	ErrMessageNotFound  = errors.New("outbox message not found")
	ErrAlreadyProcessed = errors.New("outbox message already processed")
	ErrInvalidMessage   = errors.New("invalid outbox message")
)
