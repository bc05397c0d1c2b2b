package entity

import (
	"errors"
	"fmt"

	"github.com/jbweber/tinyvmm/internal/store"
)

// ErrNotFound mirrors store.ErrNotFound at the entity façade, per spec.md's
// error taxonomy ("NotFound — entity façade — 404 at API; skip at
// reconcile").
var ErrNotFound = store.ErrNotFound

// ErrKeyExists mirrors store.ErrKeyExists at the entity façade.
var ErrKeyExists = store.ErrKeyExists

// ValidationError wraps a field-schema validation failure.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation failed: %v", e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }

// NotAnObjectError is returned when stored bytes do not decode to a JSON
// object.
type NotAnObjectError struct{}

func (e *NotAnObjectError) Error() string { return "stored value is not a JSON object" }

// MissingKeyError is returned when a required key (e.g. "apiVersion") is
// absent from a stored object.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string { return fmt.Sprintf("missing key %q", e.Key) }

// FailedMigrationError is returned when no migrator is registered for an
// observed schema version, matching the original's
// FailedMigration/NoMigrationAvailable errors.
type FailedMigrationError struct {
	Kind string
	From string
}

func (e *FailedMigrationError) Error() string {
	return fmt.Sprintf("%s: no migration available from version %q", e.Kind, e.From)
}

// SerializeError wraps a JSON marshal/unmarshal failure.
type SerializeError struct {
	Err error
}

func (e *SerializeError) Error() string { return fmt.Sprintf("serialize: %v", e.Err) }
func (e *SerializeError) Unwrap() error { return e.Err }

var errNoProgress = errors.New("migration made no version progress")
