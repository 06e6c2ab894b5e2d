// Package store defines the primitives of a simple key/value storage.
//
// The contracts never write to the storage directly. Each operation receives a
// snapshot from DB.Update and the snapshot is committed only when the
// operation returns without error, which makes every operation an atomic unit.
package store

// Readable is the interface for a readable store.
type Readable interface {
	// Get returns the value of the key, or nil if the key does not exist.
	Get(key []byte) ([]byte, error)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and write independently. A
// write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}

// DB is the interface of a store that applies snapshots atomically.
type DB interface {
	// View executes the read-only function on a consistent view of the store.
	View(fn func(Readable) error) error

	// Update executes the function on a writable snapshot. The writes are
	// committed if and only if the function returns nil, otherwise they are
	// all discarded. Updates are applied one at a time.
	Update(fn func(Snapshot) error) error

	// Close releases the resources.
	Close() error
}
