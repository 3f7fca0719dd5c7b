package escrowdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesIsolateBuckets(t *testing.T) {
	db := NewMemory()
	ta := NewTable(db, []byte("a"))
	tb := NewTable(db, []byte("b"))

	require.NoError(t, ta.Put([]byte("k"), []byte("va")))
	require.NoError(t, tb.Put([]byte("k"), []byte("vb")))

	v, err := ta.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("va"), v)

	v, err = tb.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("vb"), v)

	require.NoError(t, ta.Delete([]byte("k")))
	v, err = tb.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("vb"), v, "deleting in one bucket must not leak into another")

	// the raw store sees prefixed keys
	raw, err := db.Get([]byte("bk"))
	require.NoError(t, err)
	assert.Equal(t, []byte("vb"), raw)
}

func TestTableIteratorTrimsPrefix(t *testing.T) {
	db := NewMemory()
	tbl := NewTable(db, []byte("pfx"))
	require.NoError(t, tbl.Put([]byte{0x01}, []byte("1")))
	require.NoError(t, tbl.Put([]byte{0x02}, []byte("2")))
	require.NoError(t, db.Put([]byte("zzz"), []byte("other")))

	it := tbl.NewIterator(nil, nil)
	defer it.Release()

	var keys [][]byte
	for it.Next() {
		keys = append(keys, append([]byte{}, it.Key()...))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, [][]byte{{0x01}, {0x02}}, keys)
}

func TestTableBatchReplayTrimsPrefix(t *testing.T) {
	db := NewMemory()
	tbl := NewTable(db, []byte("p"))

	b := tbl.NewBatch()
	require.NoError(t, b.Put([]byte("k"), []byte("v")))
	require.NoError(t, b.Write())

	// replay hands back table-local keys
	dst := NewMemory()
	require.NoError(t, b.Replay(dst))
	v, err := dst.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	// while the parent store holds the prefixed key
	v, err = db.Get([]byte("pk"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
