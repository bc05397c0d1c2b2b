package store

import "errors"

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrKeyExists is returned by Create when the key already exists.
var ErrKeyExists = errors.New("store: key exists")
