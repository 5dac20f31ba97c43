package qrcode

import "errors"

var (
	ErrEmptyContent        = errors.New("qrcode: content cannot be empty")
	ErrFailedToRenderImage = errors.New("qrcode: failed to render image")
)
