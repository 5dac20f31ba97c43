package redisstore

import "errors"

var ErrCorruptValue = errors.New("redisstore: stored value is not valid JSON")
