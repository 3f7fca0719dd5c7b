package escrowdb

import (
	"github.com/Fantom-foundation/lachesis-base/kvdb"
)

type batchOp struct {
	del   bool
	key   []byte
	value []byte
}

// memBatch queues operations in memory until Write hands them to the
// backend-specific flush in one piece.
type memBatch struct {
	flush func(ops []batchOp) error
	ops   []batchOp
	size  int
}

var _ kvdb.Batch = (*memBatch)(nil)

func (b *memBatch) Put(key, value []byte) error {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), value: copyBytes(value)})
	b.size += len(key) + len(value)
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{del: true, key: copyBytes(key)})
	b.size += len(key)
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *memBatch) ValueSize() int {
	return b.size
}

// Write flushes every queued operation at once.
func (b *memBatch) Write() error {
	return b.flush(b.ops)
}

// Reset resets the batch for reuse.
func (b *memBatch) Reset() {
	b.ops = b.ops[:0]
	b.size = 0
}

// Replay replays the batch contents in order.
func (b *memBatch) Replay(w kvdb.Writer) error {
	for _, op := range b.ops {
		if op.del {
			if err := w.Delete(op.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(op.key, op.value); err != nil {
			return err
		}
	}
	return nil
}
