package session

import "errors"

// ErrNotFound is returned by Load when no session exists for the given ID.
var ErrNotFound = errors.New("session: not found")
