package config

import "errors"

// ErrNotFound is returned when a session or setting does not exist in the store.
var ErrNotFound = errors.New("not found")
