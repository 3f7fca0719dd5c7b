package escrowdb

import (
	"bytes"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
)

// Overlay stages writes on top of a read-only view of a backing store.
// Reads see staged values first and fall through to the parent, so a
// multi-step operation observes its own intermediate writes. Nothing
// touches the parent until Flush copies the staged set into a batch.
type Overlay struct {
	parent Store
	staged map[string]*[]byte // nil value marks a staged deletion
}

var _ Store = (*Overlay)(nil)

// NewOverlay stages on top of parent.
func NewOverlay(parent Store) *Overlay {
	return &Overlay{
		parent: parent,
		staged: make(map[string]*[]byte),
	}
}

func (o *Overlay) Has(key []byte) (bool, error) {
	if v, ok := o.staged[string(key)]; ok {
		return v != nil, nil
	}
	return o.parent.Has(key)
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	if v, ok := o.staged[string(key)]; ok {
		if v == nil {
			return nil, nil
		}
		return copyBytes(*v), nil
	}
	return o.parent.Get(key)
}

func (o *Overlay) Put(key []byte, value []byte) error {
	v := copyBytes(value)
	o.staged[string(key)] = &v
	return nil
}

func (o *Overlay) Delete(key []byte) error {
	o.staged[string(key)] = nil
	return nil
}

// Flush copies the staged set into batch in ascending key order. The
// overlay keeps its content, so a failed batch write can be retried.
func (o *Overlay) Flush(batch kvdb.Batch) error {
	keys := make([]string, 0, len(o.staged))
	for k := range o.staged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := o.staged[k]
		if v == nil {
			if err := batch.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := batch.Put([]byte(k), *v); err != nil {
			return err
		}
	}
	return nil
}

// NewBatch stages its content into the overlay on Write.
func (o *Overlay) NewBatch() kvdb.Batch {
	return &memBatch{
		flush: func(ops []batchOp) error {
			for _, op := range ops {
				if op.del {
					if err := o.Delete(op.key); err != nil {
						return err
					}
					continue
				}
				if err := o.Put(op.key, op.value); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewIterator walks the merged view of the parent and the staged set.
func (o *Overlay) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	lo := append(copyBytes(prefix), start...)
	var keys [][]byte
	for k := range o.staged {
		kb := []byte(k)
		if bytes.HasPrefix(kb, prefix) && bytes.Compare(kb, lo) >= 0 {
			keys = append(keys, kb)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })

	vals := make([]*[]byte, len(keys))
	for i, k := range keys {
		vals[i] = o.staged[string(k)]
	}
	return &overlayIterator{
		parent: o.parent.NewIterator(prefix, start),
		keys:   keys,
		vals:   vals,
	}
}

// Close drops the staged set. The parent stays open.
func (o *Overlay) Close() error {
	o.staged = nil
	return nil
}

// overlayIterator merges a parent iterator with a sorted snapshot of the
// staged set. At equal keys the staged entry wins; staged deletions mask
// parent entries.
type overlayIterator struct {
	parent kvdb.Iterator
	keys   [][]byte
	vals   []*[]byte
	i      int

	pLoaded bool
	pOK     bool
	key     []byte
	value   []byte
}

func (it *overlayIterator) Next() bool {
	for {
		if !it.pLoaded {
			it.pOK = it.parent.Next()
			it.pLoaded = true
		}
		haveStaged := it.i < len(it.keys)
		if !haveStaged && !it.pOK {
			it.key, it.value = nil, nil
			return false
		}

		useStaged := haveStaged
		if haveStaged && it.pOK {
			switch cmp := bytes.Compare(it.keys[it.i], it.parent.Key()); {
			case cmp > 0:
				useStaged = false
			case cmp == 0:
				it.pLoaded = false // staged entry shadows the parent one
			}
		}

		if useStaged {
			k, v := it.keys[it.i], it.vals[it.i]
			it.i++
			if v == nil {
				continue
			}
			it.key, it.value = copyBytes(k), copyBytes(*v)
			return true
		}

		it.key = copyBytes(it.parent.Key())
		it.value = copyBytes(it.parent.Value())
		it.pLoaded = false
		return true
	}
}

func (it *overlayIterator) Error() error {
	return it.parent.Error()
}

func (it *overlayIterator) Key() []byte {
	return it.key
}

func (it *overlayIterator) Value() []byte {
	return it.value
}

func (it *overlayIterator) Release() {
	it.parent.Release()
	it.key, it.value = nil, nil
}
