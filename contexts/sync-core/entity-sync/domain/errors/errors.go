package errors

import "errors"

var (
	ErrMalformedRecord = errors.New("remote record is missing an id")
	ErrRecordNotFound  = errors.New("record not found")
	ErrRemoteRejected  = errors.New("remote endpoint rejected the request")
)
