package model

import "errors"

// ErrNotFound is returned by storage lookups that matched nothing
var ErrNotFound = errors.New("not found")
