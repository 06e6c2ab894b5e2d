package kv

import (
	"go.dedis.ch/zktally/core/store"
	"golang.org/x/xerrors"
)

// Store exposes a single bucket of a database as a store.DB. Each update runs
// in one database transaction so that a failing update leaves the bucket
// untouched.
//
// - implements store.DB
type Store struct {
	db     DB
	bucket []byte
}

// NewStore returns a store backed by the bucket of the database.
func NewStore(db DB, bucket []byte) Store {
	return Store{
		db:     db,
		bucket: bucket,
	}
}

// View implements store.DB. A missing bucket is read as an empty store.
func (s Store) View(fn func(store.Readable) error) error {
	return s.db.View(func(tx ReadableTx) error {
		bucket := tx.GetBucket(s.bucket)

		return fn(snapshot{bucket: bucket})
	})
}

// Update implements store.DB. It creates the bucket if necessary and rolls the
// transaction back when the function fails.
func (s Store) Update(fn func(store.Snapshot) error) error {
	return s.db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate(s.bucket)
		if err != nil {
			return xerrors.Errorf("failed to open bucket: %v", err)
		}

		return fn(snapshot{bucket: bucket})
	})
}

// Close implements store.DB. It closes the underlying database.
func (s Store) Close() error {
	return s.db.Close()
}

// snapshot is the adapter of a bucket to a store snapshot. The bucket is nil
// when a read-only transaction looks at a bucket not yet created.
//
// - implements store.Snapshot
type snapshot struct {
	bucket Bucket
}

// Get implements store.Readable. The value is copied as the bucket memory is
// only valid during the transaction.
func (s snapshot) Get(key []byte) ([]byte, error) {
	if s.bucket == nil {
		return nil, nil
	}

	value := s.bucket.Get(key)
	if value == nil {
		return nil, nil
	}

	buffer := make([]byte, len(value))
	copy(buffer, value)

	return buffer, nil
}

// Set implements store.Writable.
func (s snapshot) Set(key, value []byte) error {
	if s.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	return s.bucket.Set(key, value)
}

// Delete implements store.Writable.
func (s snapshot) Delete(key []byte) error {
	if s.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	return s.bucket.Delete(key)
}
