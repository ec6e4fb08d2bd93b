package models

import "errors"

// ErrNotFound is returned when a single record lookup matches nothing.
var ErrNotFound = errors.New("record not found")
