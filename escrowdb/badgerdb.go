package escrowdb

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/dgraph-io/badger/v4"
)

// BadgerStore adapts a Badger database to the Store contract. It is the
// persistent backend of the ledger.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (or creates) a Badger database under dir. cacheMB
// splits between the block cache, the index cache and the memtables;
// zero keeps Badger's defaults.
func OpenBadger(dir string, cacheMB int) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithSyncWrites(false)
	if cacheMB > 0 {
		budget := int64(cacheMB) << 20
		opts = opts.
			WithBlockCacheSize(budget / 2).
			WithIndexCacheSize(budget / 4).
			WithMemTableSize(budget / 4)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

// OpenBadgerInMemory opens a Badger instance that never touches disk.
func OpenBadgerInMemory() (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Has(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BadgerStore) Put(key []byte, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *BadgerStore) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// NewBatch queues writes and commits them in a single transaction, so the
// batch applies all-or-nothing.
func (s *BadgerStore) NewBatch() kvdb.Batch {
	return &memBatch{
		flush: func(ops []batchOp) error {
			return s.db.Update(func(txn *badger.Txn) error {
				for _, op := range ops {
					if op.del {
						if err := txn.Delete(op.key); err != nil {
							return err
						}
						continue
					}
					if err := txn.Set(op.key, op.value); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func (s *BadgerStore) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = copyBytes(prefix)
	return &badgerIterator{
		txn:    txn,
		it:     txn.NewIterator(opts),
		prefix: copyBytes(prefix),
		seek:   append(copyBytes(prefix), start...),
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type badgerIterator struct {
	txn    *badger.Txn
	it     *badger.Iterator
	prefix []byte
	seek   []byte

	started  bool
	released bool
	key      []byte
	value    []byte
	err      error
}

func (i *badgerIterator) Next() bool {
	if i.released || i.err != nil {
		return false
	}
	if !i.started {
		i.it.Seek(i.seek)
		i.started = true
	} else {
		i.it.Next()
	}
	if !i.it.ValidForPrefix(i.prefix) {
		i.key, i.value = nil, nil
		return false
	}
	item := i.it.Item()
	i.key = item.KeyCopy(nil)
	i.value, i.err = item.ValueCopy(nil)
	if i.err != nil {
		i.key, i.value = nil, nil
		return false
	}
	return true
}

func (i *badgerIterator) Error() error {
	return i.err
}

func (i *badgerIterator) Key() []byte {
	return i.key
}

func (i *badgerIterator) Value() []byte {
	return i.value
}

func (i *badgerIterator) Release() {
	if i.released {
		return
	}
	i.released = true
	i.it.Close()
	i.txn.Discard()
	i.key, i.value = nil, nil
}
