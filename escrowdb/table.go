package escrowdb

import (
	"github.com/Fantom-foundation/lachesis-base/kvdb"
)

// Table is a Store view with every key transparently prefixed. It carves
// independent buckets out of one backing store, so unrelated record types
// cannot collide.
type Table struct {
	db     Store
	prefix []byte
}

var _ Store = (*Table)(nil)

// NewTable wraps db under the given key prefix.
func NewTable(db Store, prefix []byte) *Table {
	return &Table{
		db:     db,
		prefix: copyBytes(prefix),
	}
}

func (t *Table) fullKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(t.prefix)+len(key)), t.prefix...), key...)
}

func (t *Table) Has(key []byte) (bool, error) {
	return t.db.Has(t.fullKey(key))
}

func (t *Table) Get(key []byte) ([]byte, error) {
	return t.db.Get(t.fullKey(key))
}

func (t *Table) Put(key []byte, value []byte) error {
	return t.db.Put(t.fullKey(key), value)
}

func (t *Table) Delete(key []byte) error {
	return t.db.Delete(t.fullKey(key))
}

// Close is a no-op: a table does not own the backing store.
func (t *Table) Close() error {
	return nil
}

func (t *Table) NewBatch() kvdb.Batch {
	return &tableBatch{
		batch:  t.db.NewBatch(),
		prefix: t.prefix,
	}
}

func (t *Table) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	return &tableIterator{
		it:   t.db.NewIterator(t.fullKey(prefix), start),
		trim: len(t.prefix),
	}
}

type tableBatch struct {
	batch  kvdb.Batch
	prefix []byte
}

func (b *tableBatch) fullKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(b.prefix)+len(key)), b.prefix...), key...)
}

func (b *tableBatch) Put(key, value []byte) error {
	return b.batch.Put(b.fullKey(key), value)
}

func (b *tableBatch) Delete(key []byte) error {
	return b.batch.Delete(b.fullKey(key))
}

func (b *tableBatch) ValueSize() int {
	return b.batch.ValueSize()
}

func (b *tableBatch) Write() error {
	return b.batch.Write()
}

func (b *tableBatch) Reset() {
	b.batch.Reset()
}

func (b *tableBatch) Replay(w kvdb.Writer) error {
	return b.batch.Replay(&tableReplayer{writer: w, trim: len(b.prefix)})
}

type tableReplayer struct {
	writer kvdb.Writer
	trim   int
}

func (r *tableReplayer) Put(key, value []byte) error {
	return r.writer.Put(key[r.trim:], value)
}

func (r *tableReplayer) Delete(key []byte) error {
	return r.writer.Delete(key[r.trim:])
}

type tableIterator struct {
	it   kvdb.Iterator
	trim int
}

func (i *tableIterator) Next() bool {
	return i.it.Next()
}

func (i *tableIterator) Error() error {
	return i.it.Error()
}

func (i *tableIterator) Key() []byte {
	key := i.it.Key()
	if key == nil {
		return nil
	}
	return key[i.trim:]
}

func (i *tableIterator) Value() []byte {
	return i.it.Value()
}

func (i *tableIterator) Release() {
	i.it.Release()
}
