package security

import "errors"

var ErrUserNotFound = errors.New("security: user not found")
