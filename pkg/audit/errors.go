package audit

import "errors"

var (
	ErrInvalidEvent        = errors.New("audit: invalid event")
	ErrStorageNotAvailable = errors.New("audit: storage is closed")
	ErrBufferFull          = errors.New("audit: buffer is full")
)
