// Package prefixed isolates the keys of a contract inside a store shared by
// the contracts. A key is stored under the digest of the namespace and the
// key, so two namespaces never collide whatever keys they use.
package prefixed

import (
	"go.dedis.ch/zktally/core/store"
	"go.dedis.ch/zktally/crypto"
)

var hashFac = crypto.NewHashFactory(crypto.Sha256)

// readable is a read-only view of a namespace.
//
// - implements store.Readable
type readable struct {
	parent    store.Readable
	namespace string
}

// snapshot is a writable view of a namespace.
//
// - implements store.Snapshot
type snapshot struct {
	readable
	parent store.Writable
}

// NewSnapshot returns the view of the namespace of the snapshot.
func NewSnapshot(namespace string, snap store.Snapshot) store.Snapshot {
	return snapshot{
		readable: readable{parent: snap, namespace: namespace},
		parent:   snap,
	}
}

// NewReadable returns the read-only view of the namespace.
func NewReadable(namespace string, r store.Readable) store.Readable {
	return readable{parent: r, namespace: namespace}
}

// Get implements store.Readable.
func (r readable) Get(key []byte) ([]byte, error) {
	return r.parent.Get(Key(r.namespace, key))
}

// Set implements store.Writable.
func (s snapshot) Set(key []byte, value []byte) error {
	return s.parent.Set(Key(s.namespace, key), value)
}

// Delete implements store.Writable.
func (s snapshot) Delete(key []byte) error {
	return s.parent.Delete(Key(s.namespace, key))
}

// Key returns the 32 bytes key under which the key of the namespace is
// stored.
func Key(namespace string, key []byte) []byte {
	return crypto.Digest(hashFac, []byte(namespace), key)
}
