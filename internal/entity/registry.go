// Package entity is the generic entity façade (C3) sitting on top of
// internal/store: it applies a kind's migration chain to stored bytes at
// read time and enforces field validation on write, without the store ever
// knowing about schema versions.
//
// Grounded on original_source/.../database/entity.rs's Entity trait
// (KIND, API_VERSION, migrator, migrate_version, get/list/delete/create)
// and translated to Go 1.24 generics as a Kind[T] descriptor plus a
// Registry[T] of CRUD methods, the idiomatic equivalent of a Rust trait
// implemented once per concrete entity type.
package entity

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/tinyvmm/internal/store"
)

// Migrator upgrades a decoded object by one schema version, given the
// version it is currently at. ok is false when version is the kind's
// terminal version and no migrator exists.
type Migrator func(version string) (step func(map[string]any) (map[string]any, error), ok bool)

// Kind describes one persisted entity kind: its literal name, its current
// schema version, the migration chain from older versions, and field
// validation for T.
type Kind[T any] struct {
	Name       string
	APIVersion string
	Migrator   Migrator
	Validate   func(*T) error
	NameOf     func(*T) string
}

// Registry is the generic CRUD façade for one entity Kind, backed by a
// shared Store.
type Registry[T any] struct {
	store *store.Store
	kind  Kind[T]
}

// NewRegistry builds a Registry for kind backed by s.
func NewRegistry[T any](s *store.Store, kind Kind[T]) *Registry[T] {
	return &Registry[T]{store: s, kind: kind}
}

// Get loads the named entity, migrating it to the kind's current schema
// version if it was stored at an earlier one.
func (r *Registry[T]) Get(name string) (*T, error) {
	raw, err := r.store.Get(r.kind.Name, name)
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}

// List loads every entity of this kind, keyed by name. It fails fast on
// the first entity that cannot be decoded or migrated — appropriate for
// the API server, which should surface such corruption rather than hide
// it. The reconciler uses ListTolerant instead.
func (r *Registry[T]) List() (map[string]*T, error) {
	raw, err := r.store.List(r.kind.Name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*T, len(raw))
	for name, data := range raw {
		obj, err := r.decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", r.kind.Name, name, err)
		}
		out[name] = obj
	}
	return out, nil
}

// ListTolerant loads every entity of this kind, invoking onError (instead
// of aborting) for any entity that fails to decode or migrate. This is the
// reconciler's log-and-continue list, per spec.md's per-item error policy.
func (r *Registry[T]) ListTolerant(onError func(name string, err error)) map[string]*T {
	raw, err := r.store.List(r.kind.Name)
	if err != nil {
		onError("", err)
		return nil
	}
	out := make(map[string]*T, len(raw))
	for name, data := range raw {
		obj, err := r.decode(data)
		if err != nil {
			onError(name, err)
			continue
		}
		out[name] = obj
	}
	return out
}

// Create validates obj and persists it under its own name, failing with
// ErrKeyExists if that name is already taken within this kind.
func (r *Registry[T]) Create(obj *T) error {
	if err := r.kind.Validate(obj); err != nil {
		return &ValidationError{Err: err}
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return &SerializeError{Err: err}
	}
	name := r.kind.NameOf(obj)
	return r.store.Create(r.kind.Name, name, data)
}

// Delete removes the named entity.
func (r *Registry[T]) Delete(name string) error {
	return r.store.Delete(r.kind.Name, name)
}

// decode unmarshals raw bytes into a generic object, runs it through the
// kind's migration chain until it reaches the current API version, then
// unmarshals the result into T.
func (r *Registry[T]) decode(raw []byte) (*T, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &NotAnObjectError{}
	}

	version, ok := obj["apiVersion"].(string)
	if !ok || version == "" {
		return nil, &MissingKeyError{Key: "apiVersion"}
	}

	for version != r.kind.APIVersion {
		step, ok := r.kind.Migrator(version)
		if !ok {
			return nil, &FailedMigrationError{Kind: r.kind.Name, From: version}
		}
		upgraded, err := step(obj)
		if err != nil {
			return nil, fmt.Errorf("migrating %s from %s: %w", r.kind.Name, version, err)
		}
		next, ok := upgraded["apiVersion"].(string)
		if !ok || next == version {
			return nil, &FailedMigrationError{Kind: r.kind.Name, From: version}
		}
		obj = upgraded
		version = next
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, &SerializeError{Err: err}
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &SerializeError{Err: err}
	}
	return &out, nil
}
