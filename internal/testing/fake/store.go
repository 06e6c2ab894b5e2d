package fake

import "go.dedis.ch/zktally/core/store"

// InMemorySnapshot is a fake implementation of a store snapshot.
//
// - implements store.Snapshot
type InMemorySnapshot struct {
	store.Snapshot

	values    map[string][]byte
	ErrRead   error
	ErrWrite  error
	ErrDelete error
}

// NewSnapshot creates a new empty snapshot.
func NewSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{
		values: make(map[string][]byte),
	}
}

// NewBadSnapshot creates a new empty snapshot that will always return an error.
func NewBadSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{
		values:    make(map[string][]byte),
		ErrRead:   fakeErr,
		ErrWrite:  fakeErr,
		ErrDelete: fakeErr,
	}
}

// Get implements store.Snapshot.
func (snap *InMemorySnapshot) Get(key []byte) ([]byte, error) {
	if snap.ErrRead != nil {
		return nil, snap.ErrRead
	}

	return snap.values[string(key)], nil
}

// Set implements store.Snapshot.
func (snap *InMemorySnapshot) Set(key, value []byte) error {
	if snap.ErrWrite != nil {
		return snap.ErrWrite
	}

	snap.values[string(key)] = value

	return nil
}

// Delete implements store.Snapshot.
func (snap *InMemorySnapshot) Delete(key []byte) error {
	if snap.ErrDelete != nil {
		return snap.ErrDelete
	}

	delete(snap.values, string(key))

	return nil
}

// Len returns the number of keys in the snapshot.
func (snap *InMemorySnapshot) Len() int {
	return len(snap.values)
}

// DB is a fake database that applies the functions directly on a snapshot
// without isolation.
//
// - implements store.DB
type DB struct {
	Snap *InMemorySnapshot
	Err  error
}

// NewDB returns a fake database on top of an empty snapshot.
func NewDB() DB {
	return DB{Snap: NewSnapshot()}
}

// NewBadDB returns a fake database that fails every call.
func NewBadDB() DB {
	return DB{Snap: NewSnapshot(), Err: fakeErr}
}

// View implements store.DB.
func (db DB) View(fn func(store.Readable) error) error {
	if db.Err != nil {
		return db.Err
	}

	return fn(db.Snap)
}

// Update implements store.DB.
func (db DB) Update(fn func(store.Snapshot) error) error {
	if db.Err != nil {
		return db.Err
	}

	return fn(db.Snap)
}

// Close implements store.DB.
func (db DB) Close() error {
	return db.Err
}
