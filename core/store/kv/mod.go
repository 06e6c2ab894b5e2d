// Package kv defines the key/value database behind the persistent store of
// the engines.
//
// The database is implemented with bbolt (https://github.com/etcd-io/bbolt).
// Store exposes one bucket of the database as a store.DB, so every operation
// of an engine runs in a single bbolt transaction.
package kv

// Bucket is the set of operations on a bucket inside a transaction.
type Bucket interface {
	// Get reads the key from the bucket and returns the value, or nil if the
	// key does not exist. The value is valid during the transaction only.
	Get(key []byte) []byte

	// Set assigns the value to the key.
	Set(key, value []byte) error

	// Delete deletes the key from the bucket.
	Delete(key []byte) error
}

// ReadableTx is a read-only transaction.
type ReadableTx interface {
	// GetBucket returns the bucket of the given name if it exists, otherwise it
	// returns nil.
	GetBucket(name []byte) Bucket
}

// WritableTx is a read-write transaction.
type WritableTx interface {
	ReadableTx

	// GetBucketOrCreate returns the bucket of the given name and creates it
	// if necessary.
	GetBucketOrCreate(name []byte) (Bucket, error)
}

// DB is the key/value database.
type DB interface {
	// View executes the read-only transaction.
	View(fn func(ReadableTx) error) error

	// Update executes the writable transaction. The transaction is rolled
	// back if the function returns an error.
	Update(fn func(WritableTx) error) error

	// Close closes the database and releases the file.
	Close() error
}
