// Package escrowdb provides the key-value persistence of the escrow
// ledger: a narrow store contract shared by the in-memory and Badger
// backends, prefix tables for carving one store into typed buckets, and a
// write overlay that stages a whole operation before one atomic commit.
package escrowdb

import (
	"github.com/Fantom-foundation/lachesis-base/kvdb"
)

// Store is the slice of the kvdb surface the ledger relies on. The
// lachesis in-memory database satisfies it directly; BadgerStore adapts
// Badger to the same contract.
type Store interface {
	// Has reports whether a key is present.
	Has(key []byte) (bool, error)
	// Get retrieves the value of key, or nil when the key is absent.
	Get(key []byte) ([]byte, error)
	// Put inserts the given value into the key-value store.
	Put(key []byte, value []byte) error
	// Delete removes the key from the key-value store.
	Delete(key []byte) error
	// NewBatch creates an all-or-nothing write batch.
	NewBatch() kvdb.Batch
	// NewIterator walks the subset of keys beginning with prefix, in
	// ascending order, starting at the first key >= prefix+start.
	NewIterator(prefix []byte, start []byte) kvdb.Iterator
	// Close releases the underlying resources.
	Close() error
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
