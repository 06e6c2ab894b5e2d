// Package mem implements an in-memory store. Every update is staged in a child
// layer that is merged into the parent only when the update succeeds.
package mem

import (
	"sync"

	"go.dedis.ch/zktally/core/store"
)

// item is the value of a key in a layer. A deleted item hides the value of the
// parent layers.
type item struct {
	value   []byte
	deleted bool
}

// Layer is an overlay on top of an optional parent layer. It saves the updates
// in an internal store and only keeps the updates of the current layer. When
// reading, it looks up the parent if the key is not found.
//
// - implements store.Snapshot
type Layer struct {
	parent *Layer
	store  map[string]item
}

// NewLayer creates a new empty layer without parent.
func NewLayer() *Layer {
	return &Layer{
		store: make(map[string]item),
	}
}

// Get implements store.Readable. It returns nil if the key does not exist.
func (l *Layer) Get(key []byte) ([]byte, error) {
	for layer := l; layer != nil; layer = layer.parent {
		it, found := layer.store[string(key)]
		if !found {
			continue
		}

		if it.deleted {
			return nil, nil
		}

		return it.value, nil
	}

	return nil, nil
}

// Set implements store.Writable.
func (l *Layer) Set(key, value []byte) error {
	buffer := make([]byte, len(value))
	copy(buffer, value)

	l.store[string(key)] = item{value: buffer}

	return nil
}

// Delete implements store.Writable.
func (l *Layer) Delete(key []byte) error {
	l.store[string(key)] = item{deleted: true}

	return nil
}

// Len returns the number of keys with a value, parents included.
func (l *Layer) Len() int {
	seen := make(map[string]struct{})
	count := 0

	for layer := l; layer != nil; layer = layer.parent {
		for k, it := range layer.store {
			_, done := seen[k]
			if done {
				continue
			}

			seen[k] = struct{}{}

			if !it.deleted {
				count++
			}
		}
	}

	return count
}

// Stage creates a child layer and applies the function to it. The child is
// returned only if the function succeeds, otherwise it is dropped.
func (l *Layer) Stage(fn func(store.Snapshot) error) (*Layer, error) {
	child := l.makeChild()

	err := fn(child)
	if err != nil {
		return nil, err
	}

	return child, nil
}

// merge writes the updates of the layer into its parent.
func (l *Layer) merge() {
	for k, it := range l.store {
		if it.deleted && l.parent.parent == nil {
			delete(l.parent.store, k)
			continue
		}

		l.parent.store[k] = it
	}
}

func (l *Layer) makeChild() *Layer {
	return &Layer{
		parent: l,
		store:  make(map[string]item),
	}
}

// Store is an in-memory database that applies the updates atomically.
//
// - implements store.DB
type Store struct {
	sync.RWMutex

	root *Layer
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		root: NewLayer(),
	}
}

// View implements store.DB.
func (s *Store) View(fn func(store.Readable) error) error {
	s.RLock()
	defer s.RUnlock()

	return fn(s.root)
}

// Update implements store.DB. The updates are staged and merged into the store
// only when the function returns nil.
func (s *Store) Update(fn func(store.Snapshot) error) error {
	s.Lock()
	defer s.Unlock()

	child, err := s.root.Stage(fn)
	if err != nil {
		return err
	}

	child.merge()

	return nil
}

// Close implements store.DB. It does nothing.
func (s *Store) Close() error {
	return nil
}
