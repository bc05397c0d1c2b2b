// Package store is the entity store: a single embedded bbolt database of
// opaque bytes keyed by "/<kind>/<name>", plus a commit-ordered
// prefix-watch stream for the reconciler and DNS server to subscribe to.
//
// Grounded on the teacher's internal/metadata/storage.go (persisting a
// structured spec as opaque bytes under a caller-supplied key) generalized
// to a kind-agnostic key scheme, and on the original tinyvmm's
// database/store.rs (sled) for exact key format, CAS-create, and
// prefix-watch semantics.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const entitiesBucket = "entities"

// Store is a bbolt-backed KV store of entity bytes, keyed by
// "/<kind>/<name>", with a fan-out watch stream over committed changes.
type Store struct {
	db *bolt.DB
	bc *broadcaster
}

// Open opens (creating if necessary) the bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(entitiesBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store bucket: %w", err)
	}

	return &Store{db: db, bc: newBroadcaster()}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key builds the storage key for an entity of the given kind and name.
func Key(kind, name string) string {
	return fmt.Sprintf("/%s/%s", kind, name)
}

// Create writes data under key(kind, name), failing with ErrKeyExists if an
// entity is already stored there. This is the store's compare-and-swap
// create, matching the original's sled::compare_and_swap(key, None, data).
func (s *Store) Create(kind, name string, data []byte) error {
	key := Key(kind, name)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entitiesBucket))
		if b.Get([]byte(key)) != nil {
			return ErrKeyExists
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return err
	}
	s.bc.publish(Event{Key: key, Op: OpPut})
	return nil
}

// Get returns the raw bytes stored under key(kind, name), or ErrNotFound.
func (s *Store) Get(kind, name string) ([]byte, error) {
	key := Key(kind, name)
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entitiesBucket))
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// List returns every entity of the given kind, keyed by name.
func (s *Store) List(kind string) (map[string][]byte, error) {
	prefix := fmt.Sprintf("/%s/", kind)
	out := make(map[string][]byte)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entitiesBucket))
		c := b.Cursor()
		for k, v := c.Seek([]byte(prefix)); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			name := string(k)[len(prefix):]
			out[name] = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the entity stored under key(kind, name). It is a no-op
// (returning ErrNotFound) if nothing is stored there; the spec's data model
// has no soft-delete.
func (s *Store) Delete(kind, name string) error {
	key := Key(kind, name)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entitiesBucket))
		if b.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return err
	}
	s.bc.publish(Event{Key: key, Op: OpDelete})
	return nil
}

// Watch subscribes to every committed Create/Delete under prefix (e.g.
// "/" for everything, "/VirtualMachine/" for one kind). The returned
// channel is buffered to bufSize; a subscriber that falls behind
// back-pressures future Create/Delete calls rather than dropping events.
// The returned cancel func must be called to release the subscription.
func (s *Store) Watch(prefix string, bufSize int) (<-chan Event, func()) {
	return s.bc.subscribe(prefix, bufSize)
}

func hasPrefix(k []byte, prefix string) bool {
	if len(k) < len(prefix) {
		return false
	}
	return string(k[:len(prefix)]) == prefix
}
